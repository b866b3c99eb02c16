package types

import "time"

// PassState is the position of an ingestion pass in its lifecycle.
type PassState string

const (
	PassIdle               PassState = "idle"
	PassCategoriesInFlight PassState = "categories_in_flight"
	PassCategoriesDone     PassState = "categories_done"
	PassProductsInFlight   PassState = "products_in_flight"
	PassProductsDone       PassState = "products_done"
	PassArchived           PassState = "archived"
)

// IngestionTrigger names what started a pass.
type IngestionTrigger string

const (
	TriggerAPI     IngestionTrigger = "api"
	TriggerCLI     IngestionTrigger = "cli"
	TriggerStartup IngestionTrigger = "startup"
)

// IngestionStatus represents status of an ingestion run
type IngestionStatus string

const (
	StatusRunning   IngestionStatus = "running"
	StatusCompleted IngestionStatus = "completed"
	StatusFailed    IngestionStatus = "failed"
)

// ParseStats counts the lines read from one batch file.
type ParseStats struct {
	File        string `json:"file,omitempty"`
	Lines       int    `json:"lines"`
	Valid       int    `json:"valid"`
	Unparseable int    `json:"unparseable"`
}

// CategoryStats summarises a category reconcile.
type CategoryStats struct {
	Records     int `json:"records"`
	Skipped     int `json:"skipped"`
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Failed      int `json:"failed"`
	Concurrency int `json:"concurrency"`
}

// ProductStats summarises a product reconcile.
type ProductStats struct {
	Records        int `json:"records"`
	Skipped        int `json:"skipped"`
	Merged         int `json:"merged"`
	Inserted       int `json:"inserted"`
	Dropped        int `json:"dropped"`
	Lookups        int `json:"lookups"`
	LookupFailures int `json:"lookupFailures"`
	Saved          int `json:"saved"`
	SaveFailures   int `json:"saveFailures"`
}

// IngestionRun records one reconciliation pass.
type IngestionRun struct {
	ID              string           `json:"id"`
	Trigger         IngestionTrigger `json:"trigger"`
	Status          IngestionStatus  `json:"status"`
	State           PassState        `json:"state"`
	CategoriesFile  string           `json:"categoriesFile,omitempty"`
	ProductsFile    string           `json:"productsFile,omitempty"`
	CategoriesParse ParseStats       `json:"categoriesParse"`
	ProductsParse   ParseStats       `json:"productsParse"`
	Categories      CategoryStats    `json:"categories"`
	Products        ProductStats     `json:"products"`
	ArchivedFiles   []string         `json:"archivedFiles,omitempty"`
	ArchiveErrors   []string         `json:"archiveErrors,omitempty"`
	Error           string           `json:"error,omitempty"`
	StartedAt       time.Time        `json:"startedAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	DurationMillis  int64            `json:"durationMs"`
}
