package optpricer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
)

const (
	kJournalTimeLayout = time.RFC3339
)

var kJournalHeader = []string{
	"Timestamp",
	"RunId",
	"Method",
	"Instrument",
	"Spot",
	"Strike",
	"Expiry",
	"Rate",
	"Volatility",
	"Price",
	"StandardError",
	"CiLow",
	"CiHigh",
}

// PricingRecord is one priced instrument in the journal. Analytic prices
// carry a zero standard error and a degenerate interval. RunID groups the
// records written by one invocation and may be empty.
type PricingRecord struct {
	Timestamp  time.Time
	RunID      string
	Method     string
	Instrument string

	Spot       float64
	Strike     float64
	Expiry     float64
	Rate       float64
	Volatility float64

	Price         float64
	StandardError float64
	CiLow         float64
	CiHigh        float64
}

// NewAnalyticRecord records a closed-form price.
func NewAnalyticRecord(
	method string,
	instrument string,
	contract OptionContract,
	price float64,
	timestamp time.Time) *PricingRecord {

	record := newRecord(method, instrument, contract, timestamp)
	record.Price = price
	record.CiLow = price
	record.CiHigh = price
	return record
}

// NewEstimateRecord records a Monte Carlo estimate.
func NewEstimateRecord(
	method string,
	instrument string,
	contract OptionContract,
	estimate PricingEstimate,
	timestamp time.Time) *PricingRecord {

	record := newRecord(method, instrument, contract, timestamp)
	record.Price = estimate.Price
	record.StandardError = estimate.StandardError
	record.CiLow = estimate.Lower()
	record.CiHigh = estimate.Upper()
	return record
}

func newRecord(
	method string,
	instrument string,
	contract OptionContract,
	timestamp time.Time) *PricingRecord {

	return &PricingRecord{
		Timestamp:  timestamp,
		Method:     method,
		Instrument: instrument,
		Spot:       contract.spot,
		Strike:     contract.strike,
		Expiry:     contract.expiry,
		Rate:       contract.rate,
		Volatility: contract.volatility,
	}
}

func (r *PricingRecord) row() []string {
	return []string{
		r.Timestamp.Format(kJournalTimeLayout),
		r.RunID,
		r.Method,
		r.Instrument,
		formatJournalFloat(r.Spot),
		formatJournalFloat(r.Strike),
		formatJournalFloat(r.Expiry),
		formatJournalFloat(r.Rate),
		formatJournalFloat(r.Volatility),
		formatJournalFloat(r.Price),
		formatJournalFloat(r.StandardError),
		formatJournalFloat(r.CiLow),
		formatJournalFloat(r.CiHigh),
	}
}

func parseRecord(row []string) (PricingRecord, error) {
	if len(row) != len(kJournalHeader) {
		return PricingRecord{}, fmt.Errorf("expected %d columns, got %d",
			len(kJournalHeader), len(row))
	}

	record := PricingRecord{RunID: row[1], Method: row[2], Instrument: row[3]}
	var err error
	if record.Timestamp, err = time.Parse(kJournalTimeLayout, row[0]); err != nil {
		return PricingRecord{}, err
	}

	fields := []*float64{
		&record.Spot,
		&record.Strike,
		&record.Expiry,
		&record.Rate,
		&record.Volatility,
		&record.Price,
		&record.StandardError,
		&record.CiLow,
		&record.CiHigh,
	}
	for ii, field := range fields {
		column := ii + 4
		if *field, err = strconv.ParseFloat(row[column], 64); err != nil {
			return PricingRecord{}, fmt.Errorf("column %s: %w", kJournalHeader[column], err)
		}
	}
	return record, nil
}

func formatJournalFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// PricingJournal is an append-only CSV log of priced instruments.
type PricingJournal struct {
	filePath string
	records  []PricingRecord
}

func NewPricingJournal(fileName string) *PricingJournal {
	return &PricingJournal{
		filePath: fileName,
		records:  []PricingRecord{},
	}
}

func (j *PricingJournal) FilePath() string { return j.filePath }

// ReadFile loads every record from the journal. A missing file is an empty
// journal.
func (j *PricingJournal) ReadFile() error {
	file, err := os.Open(j.filePath)
	if errors.Is(err, os.ErrNotExist) {
		j.records = []PricingRecord{}
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	// Read the header row
	_, err = reader.Read()
	if err == io.EOF {
		j.records = []PricingRecord{}
		return nil
	}
	if err != nil {
		return err
	}

	records := []PricingRecord{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		record, err := parseRecord(row)
		if err != nil {
			msg := fmt.Sprintf("Malformed journal row %d in %s: %v", line, j.filePath, err)
			glog.Error(msg)
			return errors.New(msg)
		}
		records = append(records, record)
	}

	j.records = records
	return nil
}

// AppendToFile writes record, creating the file and its header if needed.
func (j *PricingJournal) AppendToFile(record *PricingRecord) error {
	file, err := os.OpenFile(j.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	// Check if file is empty, and write header if required
	stat, err := file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() == 0 {
		if err = writer.Write(kJournalHeader); err != nil {
			return err
		}
	}
	if err = writer.Write(record.row()); err != nil {
		return err
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		return err
	}

	j.records = append(j.records, *record)
	glog.V(1).Infof("Journaled %s %s at %.4f to %s",
		record.Method, record.Instrument, record.Price, j.filePath)
	return nil
}

func (j *PricingJournal) Records() []PricingRecord {
	return j.records
}

// GetRecordsForDateRange returns the records from the numDays days before
// date up to date.
func (j *PricingJournal) GetRecordsForDateRange(
	date time.Time,
	numDays int) ([]PricingRecord, error) {

	if numDays <= 0 {
		return nil, invalidParameter("numDays must be a positive integer, got %d", numDays)
	}

	prevDate := date.AddDate(0, 0, -numDays)
	return j.GetRecords(prevDate, date), nil
}

// GetRecords returns the records stamped in [startDate, endDate].
func (j *PricingJournal) GetRecords(
	startDate time.Time,
	endDate time.Time) []PricingRecord {

	records := []PricingRecord{}
	for _, record := range j.records {
		if !record.Timestamp.Before(startDate) && !record.Timestamp.After(endDate) {
			records = append(records, record)
		}
	}
	return records
}

func (j *PricingJournal) GetLatestRecord() *PricingRecord {
	if len(j.records) <= 0 {
		return nil
	}
	return &j.records[len(j.records)-1]
}
