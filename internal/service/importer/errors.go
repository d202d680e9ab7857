package importer

import (
	"errors"
	"fmt"
)

var ErrNoPatients = errors.New("nenhuma das abas esperadas (TPC, PBK, PBG, PBD, PBH) foi encontrada no arquivo ou elas estão vazias")

// ImportError reports a workbook that could not be turned into an
// aggregate. The stored aggregate is left unchanged.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string { return fmt.Sprintf("import failed: %v", e.Err) }
func (e *ImportError) Unwrap() error { return e.Err }
