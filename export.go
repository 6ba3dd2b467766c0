package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// pairRecords zips time labels with cleaned values into ordered records.
// Both sequences are derived from the same response, so a length mismatch
// means an extraction bug rather than bad input.
func pairRecords(labels []string, values []float64) ([]Record, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("axis/value length mismatch: %d labels, %d values", len(labels), len(values))
	}
	records := make([]Record, len(values))
	for i := range records {
		records[i] = Record{Time: labels[i], Conso: values[i]}
	}
	return records, nil
}

// exportValues runs the pipeline for one granularity and overwrites its
// export file under baseDir. Marshalling completes before the file is
// touched, so a failed export leaves any previous export intact.
func exportValues(res *ConsumptionResponse, g Granularity, baseDir string) error {
	values, err := consumptionValues(res)
	if err != nil {
		return fmt.Errorf("extracting %s values: %w", g.Name, err)
	}

	labels, err := timeAxis(res, g)
	if err != nil {
		return fmt.Errorf("generating %s time axis: %w", g.Name, err)
	}

	records, err := pairRecords(labels, values)
	if err != nil {
		return fmt.Errorf("pairing %s records: %w", g.Name, err)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding %s records: %w", g.Name, err)
	}

	path := filepath.Join(baseDir, g.fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// exportHoursValues writes the half-hour power export (last day's detail).
func exportHoursValues(res *ConsumptionResponse, baseDir string) error {
	return exportValues(res, GranularityHalfHour, baseDir)
}

// exportDaysValues writes the daily consumption export (rolling month).
func exportDaysValues(res *ConsumptionResponse, baseDir string) error {
	return exportValues(res, GranularityDay, baseDir)
}

// exportMonthsValues writes the monthly consumption export (rolling year).
func exportMonthsValues(res *ConsumptionResponse, baseDir string) error {
	return exportValues(res, GranularityMonth, baseDir)
}

// exportYearsValues writes the yearly consumption export.
func exportYearsValues(res *ConsumptionResponse, baseDir string) error {
	return exportValues(res, GranularityYear, baseDir)
}
