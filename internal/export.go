package lithotop

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrNothingToExport is returned when no machine is selected or no metrics are loaded
var ErrNothingToExport = errors.New("no data to export")

// ErrInvalidMachineID is returned for machine ids that cannot name a file
var ErrInvalidMachineID = errors.New("invalid machine id")

// ExportHeader is the fixed CSV header: machine id, metric name, metric value,
// record time, source file
var ExportHeader = []string{"机器ID", "指标名称", "指标值", "记录时间", "源文件"}

// EncodeCSV renders metric records as CSV. The value column is always quoted;
// the other columns only when they contain a separator, quote or newline.
func EncodeCSV(records []MetricRecord) string {
	rows := make([]string, 0, len(records)+1)
	rows = append(rows, strings.Join(ExportHeader, ","))
	for _, r := range records {
		rows = append(rows, strings.Join([]string{
			csvField(r.MachineID),
			csvField(r.MetricName),
			quote(r.Value),
			csvField(r.Timestamp),
			csvField(r.SourceFile),
		}, ","))
	}
	return strings.Join(rows, "\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

// ExportFileName is litho_data_<machineId>_<YYYY-MM-DD>.csv with the UTC date
func ExportFileName(machineID string, now time.Time) string {
	return fmt.Sprintf("litho_data_%s_%s.csv", machineID, now.UTC().Format("2006-01-02"))
}

// validMachineID rejects ids that would leave the export directory
func validMachineID(id string) bool {
	return !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

// Exporter writes CSV exports into a directory
type Exporter struct {
	Fs  afero.Fs
	Dir string
	Now func() time.Time
}

// NewExporter creates an exporter on the OS filesystem
func NewExporter(dir string) *Exporter {
	return &Exporter{Fs: afero.NewOsFs(), Dir: dir, Now: time.Now}
}

// Export writes the loaded metrics of machineID and returns the written path
func (e *Exporter) Export(machineID string, records []MetricRecord) (string, error) {
	if machineID == "" || len(records) == 0 {
		return "", ErrNothingToExport
	}
	if !validMachineID(machineID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMachineID, machineID)
	}
	if err := e.Fs.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(e.Dir, ExportFileName(machineID, e.Now()))
	if err := afero.WriteFile(e.Fs, path, []byte(EncodeCSV(records)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
