package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Alijeyrad/fieldcare/internal/domain"
	"github.com/Alijeyrad/fieldcare/internal/store"
)

// workbook builds an in-memory .xlsx with the given sheets. Each sheet is
// a header row followed by data rows.
func workbook(t *testing.T, sheets map[string][][]any) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet(%s): %v", name, err)
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}
	if len(sheets) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			t.Fatalf("DeleteSheet: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func newTestService(t *testing.T) (*importService, *store.Store) {
	t.Helper()
	st := store.New(store.NewMemory())
	svc := New(st, nil).(*importService)
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("gen-%d", seq)
	}
	return svc, st
}

func TestImportPregnantOnly(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	r := workbook(t, map[string][][]any{
		"PBG": {
			{"nome", "cpf", "dum", "dataNascimento", "vacinacao"},
			{"Juliana Paes", "33344455566", 45413, 29356, "Em dia"},
		},
	})

	db, err := svc.Import(ctx, r)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(db.PregnantPatients) != 1 || len(db.GeneralPatients) != 0 || len(db.ChronicPatients) != 0 {
		t.Fatalf("unexpected sizes %d/%d/%d", len(db.GeneralPatients), len(db.PregnantPatients), len(db.ChronicPatients))
	}

	p := db.PregnantPatients[0]
	if p.Kind() != domain.KindPregnant {
		t.Errorf("kind = %s", p.Kind())
	}
	if p.DUM != "2024-05-01" || p.DataNascimento != "1980-05-15" {
		t.Errorf("dates not converted: dum=%q nascimento=%q", p.DUM, p.DataNascimento)
	}
	if p.Vacinacao != domain.VaccinationUpToDate {
		t.Errorf("vacinacao = %q", p.Vacinacao)
	}
	if p.ID != "gen-1" {
		t.Errorf("expected generated id, got %q", p.ID)
	}
	if p.Visits == nil {
		t.Error("expected empty visit list")
	}

	stored, err := st.Load(ctx)
	if err != nil || stored.PatientCount() != 1 {
		t.Fatalf("Load() = %v, %v", stored, err)
	}

	// An empty PBG tab (header only) is rejected and leaves storage as is.
	r = workbook(t, map[string][][]any{
		"PBG": {{"nome", "cpf", "dum"}},
	})
	_, err = svc.Import(ctx, r)
	var ie *ImportError
	if !errors.As(err, &ie) || !errors.Is(err, ErrNoPatients) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	stored, _ = st.Load(ctx)
	if stored.PatientCount() != 1 {
		t.Errorf("failed import changed storage: %d patients", stored.PatientCount())
	}
}

func TestImportAllSheets(t *testing.T) {
	svc, _ := newTestService(t)

	r := workbook(t, map[string][][]any{
		"TPC": {
			{"id", "nome", "cpf", "cns", "coluna_extra"},
			{"t1", "Carlos", "111", "999", "x"},
			{"", "", "", "", ""},
			{"t2", "Fernanda", "222"},
		},
		"PBK":     {{"nome", "cpf"}, {"Kátia", "333"}},
		"PBD":     {{"nome", "cpf", "ultimoResultadoGlicemia", "dum"}, {"Maria", "444", "180", "2024-01-01"}},
		"PBH":     {{"nome", "cpf", "ultimaAfericaoPA", "condicao"}, {"Roberto", "555", "150/95", "Outra"}},
		"Ignorar": {{"nome"}, {"Ninguém"}},
	})

	db, err := svc.Parse(context.Background(), r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := len(db.GeneralPatients); got != 3 {
		t.Fatalf("general = %d, want 3", got)
	}
	if db.GeneralPatients[0].ID != "t1" || db.GeneralPatients[2].Nome != "Kátia" {
		t.Errorf("general order = %+v", db.GeneralPatients)
	}
	if db.GeneralPatients[0].CNS != "999" {
		t.Errorf("cns = %q", db.GeneralPatients[0].CNS)
	}

	if got := len(db.ChronicPatients); got != 2 {
		t.Fatalf("chronic = %d, want 2", got)
	}
	diab, hyp := db.ChronicPatients[0], db.ChronicPatients[1]
	if diab.Condicao != domain.ConditionDiabetes || diab.UltimoResultadoGlicemia != "180" {
		t.Errorf("diabetes patient = %+v", diab.Chronic)
	}
	if diab.Pregnancy != nil {
		t.Error("pregnancy column applied to a chronic patient")
	}
	if hyp.Condicao != domain.ConditionHypertension || hyp.UltimaAfericaoPA != "150/95" {
		t.Errorf("hypertension patient = %+v", hyp.Chronic)
	}
	if len(db.PregnantPatients) != 0 {
		t.Errorf("pregnant = %d", len(db.PregnantPatients))
	}
}

func TestImportTextualDatesKept(t *testing.T) {
	svc, _ := newTestService(t)

	r := workbook(t, map[string][][]any{
		"TPC": {{"nome", "cpf", "dataNascimento"}, {"Ana", "1", "15/05/1980"}},
	})
	db, err := svc.Parse(context.Background(), r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := db.GeneralPatients[0].DataNascimento; got != "15/05/1980" {
		t.Errorf("dataNascimento = %q", got)
	}
}

func TestImportFailures(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		input   func(t *testing.T) *bytes.Reader
		wantErr error
	}{
		{
			name:  "not a workbook",
			input: func(*testing.T) *bytes.Reader { return bytes.NewReader([]byte("nome;cpf\nAna;1")) },
		},
		{
			name: "no recognised sheet",
			input: func(t *testing.T) *bytes.Reader {
				return workbook(t, map[string][][]any{"Pacientes": {{"nome"}, {"Ana"}}})
			},
			wantErr: ErrNoPatients,
		},
		{
			name: "all recognised sheets empty",
			input: func(t *testing.T) *bytes.Reader {
				return workbook(t, map[string][][]any{"TPC": {{"nome"}}, "PBD": {}})
			},
			wantErr: ErrNoPatients,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(context.Background(), tt.input(t))
			var ie *ImportError
			if !errors.As(err, &ie) {
				t.Fatalf("expected ImportError, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	svc, _ := newTestService(t)

	raw, err := svc.Template()
	if err != nil {
		t.Fatalf("Template: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	got := strings.Join(f.GetSheetList(), ",")
	if got != "TPC,PBK,PBG,PBD,PBH" {
		t.Errorf("sheets = %s", got)
	}

	rows, err := f.GetRows("PBG")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 || !strings.Contains(strings.Join(rows[0], ","), "dum") {
		t.Errorf("PBG header = %v", rows)
	}

	// The template itself carries no patients.
	if _, err := svc.Parse(context.Background(), bytes.NewReader(raw)); !errors.Is(err, ErrNoPatients) {
		t.Errorf("expected ErrNoPatients for the blank template, got %v", err)
	}
}
