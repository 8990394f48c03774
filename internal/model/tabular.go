package model

import "time"

type Tabular struct {
	ID         int64
	UserID     int64
	Name       string
	StorageKey string
	CreatedAt  time.Time
}

type TabularResponse struct {
	ID          int64  `json:"id"`
	TabularName string `json:"tabular_name"`
	TabularData string `json:"tabular_data"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type TabularStatistics struct {
	Mean      map[string]float64            `json:"mean"`
	Median    map[string]float64            `json:"median"`
	Mode      map[string]float64            `json:"mode"`
	Quartiles map[string]map[string]float64 `json:"quartiles"`
}

type TabularAnalysisResponse struct {
	Statistics TabularStatistics `json:"statistics"`
	Outliers   []int             `json:"outliers"`
}
