// Package importer loads the patient aggregate from an .xlsx workbook.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Alijeyrad/fieldcare/internal/domain"
)

// Saver replaces the persisted aggregate.
type Saver interface {
	Save(ctx context.Context, db *domain.Database) error
}

type Service interface {
	// Import parses the workbook and replaces the stored aggregate with it.
	Import(ctx context.Context, r io.Reader) (*domain.Database, error)
	// Parse builds the aggregate without persisting it.
	Parse(ctx context.Context, r io.Reader) (*domain.Database, error)
	// Template returns an empty workbook with every recognised tab.
	Template() ([]byte, error)
}

type importService struct {
	saver    Saver
	newID    func() string
	logger   *slog.Logger
	imported metric.Int64Counter
}

func New(saver Saver, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	counter, err := otel.Meter("github.com/Alijeyrad/fieldcare/internal/service/importer").
		Int64Counter("patients_imported_total", metric.WithDescription("Patients loaded from workbooks, by collection"))
	if err != nil {
		logger.Warn("import counter unavailable", "error", err)
		counter = noop.Int64Counter{}
	}
	return &importService{saver: saver, newID: uuid.NewString, logger: logger, imported: counter}
}

func (s *importService) Import(ctx context.Context, r io.Reader) (*domain.Database, error) {
	db, err := s.Parse(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := s.saver.Save(ctx, db); err != nil {
		return nil, err
	}

	for _, c := range domain.Collections {
		s.imported.Add(ctx, int64(len(*db.Patients(c))), metric.WithAttributes(attribute.String("collection", string(c))))
	}
	s.logger.InfoContext(ctx, "workbook imported",
		"general", len(db.GeneralPatients),
		"pregnant", len(db.PregnantPatients),
		"chronic", len(db.ChronicPatients),
	)
	return db, nil
}

func (s *importService) Parse(ctx context.Context, r io.Reader) (*domain.Database, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ImportError{Err: fmt.Errorf("read workbook: %w", err)}
	}
	defer f.Close()

	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	db := domain.NewDatabase()
	for _, sh := range Sheets {
		if !present[sh.Name] {
			continue
		}
		rows, err := f.GetRows(sh.Name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &ImportError{Err: fmt.Errorf("read sheet %s: %w", sh.Name, err)}
		}

		patients := s.parseRows(ctx, sh, rows)
		target := db.Patients(sh.Collection)
		if sh.Collection == domain.CollectionPregnant {
			*target = patients
		} else {
			*target = append(*target, patients...)
		}
	}

	if db.PatientCount() == 0 {
		return nil, &ImportError{Err: ErrNoPatients}
	}
	db.Normalize()
	return db, nil
}

// parseRows maps data rows to patients using the header row. Blank rows
// are skipped.
func (s *importService) parseRows(ctx context.Context, sh sheet, rows [][]string) []domain.Patient {
	patients := []domain.Patient{}
	if len(rows) == 0 {
		return patients
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	ignored := make(map[string]bool)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		p := sh.newPatient()
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			if dateFields[header[i]] {
				v = toDate(v)
			}
			set, ok := setters[header[i]]
			if !ok || !set(&p, v) {
				ignored[header[i]] = true
			}
		}
		if p.ID == "" {
			p.ID = s.newID()
		}
		patients = append(patients, p)
	}

	for h := range ignored {
		s.logger.DebugContext(ctx, "ignoring unknown column", "sheet", sh.Name, "column", h)
	}
	return patients
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (s *importService) Template() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for _, sh := range Sheets {
		if _, err := f.NewSheet(sh.Name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sh.Name, err)
		}
		headers := sh.headers()
		if err := f.SetSheetRow(sh.Name, "A1", &headers); err != nil {
			return nil, fmt.Errorf("failed to write header of %s: %w", sh.Name, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(Sheets[0].Name); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
