package models

import "time"

// Column names of the credit application dataset.
const (
	ColBenefitDate  = "fecha_de_beneficio"
	ColNeighborhood = "barrio"
	ColSex          = "sexo"
	ColBusinessType = "tipo_de_emprendimiento"
	ColBusinessIdea = "idea_negocio"
	ColCreditLine   = "línea_credito"
	ColAmount       = "monto_del_credito"
	ColStratum      = "estrato"
	ColDistrict     = "comuna_ciudadano"
)

// CreditApplication is one cleaned credit application ready for PostgreSQL storage.
type CreditApplication struct {
	ID           int64     `db:"id"`
	RunID        string    `db:"run_id"`
	Sex          string    `db:"sexo"`
	BusinessType string    `db:"tipo_de_emprendimiento"`
	BusinessIdea string    `db:"idea_negocio"`
	Neighborhood string    `db:"barrio"`
	Stratum      string    `db:"estrato"`
	District     string    `db:"comuna_ciudadano"`
	BenefitDate  time.Time `db:"fecha_de_beneficio"`
	Amount       string    `db:"monto_del_credito"`
	CreditLine   string    `db:"linea_credito"`
	CreatedAt    time.Time `db:"created_at"`
}

// CleaningStats counts what each stage of a cleaning run did.
type CleaningStats struct {
	RowsLoaded        int
	EarlyDuplicates   int
	IncompleteRows    int
	LateDuplicates    int
	RowsWritten       int
	CellsChangedByCol map[string]int
}

// NewCleaningStats returns zeroed stats.
func NewCleaningStats() *CleaningStats {
	return &CleaningStats{CellsChangedByCol: make(map[string]int)}
}

// Dropped returns the total number of rows removed.
func (s *CleaningStats) Dropped() int {
	return s.EarlyDuplicates + s.IncompleteRows + s.LateDuplicates
}

// AmountSummary holds statistics over the credit amounts that parse as numbers.
type AmountSummary struct {
	Count       int
	Unparseable int
	Mean        float64
	Median      float64
	Min         float64
	Max         float64
}

// InsightReport holds the computed summary of a cleaning run.
type InsightReport struct {
	RunID       string
	Stats       *CleaningStats
	FirstDate   time.Time
	LastDate    time.Time
	LevelCounts map[string]int
	TopLevels   map[string][]LevelCount
	Amounts     AmountSummary
}

// LevelCount is a distinct column value and how many rows carry it.
type LevelCount struct {
	Level string
	Count int
}
