package models

// Statistics fasst die Datensatzzahlen unter dem aktuellen Filter zusammen.
type Statistics struct {
	TotalRecords   int64 `json:"total_records"`
	ActiveRecords  int64 `json:"active_records"`
	DeletedRecords int64 `json:"deleted_records"`
}

// ColumnDefinition beschreibt eine Tabellenspalte für das Dashboard.
type ColumnDefinition struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Filterable bool   `json:"filterable"`
	Sortable   bool   `json:"sortable"`
}

// Metadata enthält die Filteroptionen und das Spaltenmanifest.
type Metadata struct {
	ProgressOptions   []string           `json:"progress_options"`
	SystemTypeOptions []string           `json:"system_type_options"`
	ProductOptions    []string           `json:"product_options"`
	ColumnDefinitions []ColumnDefinition `json:"column_definitions"`
}

// ColumnDefinitions ist das feste Spaltenmanifest der Oberfläche.
var ColumnDefinitions = []ColumnDefinition{
	{ID: "id", Name: "ID", Type: "number", Filterable: true, Sortable: true},
	{ID: "content", Name: "受付内容", Type: "text", Filterable: true, Sortable: true},
	{ID: "status", Name: "対応状況", Type: "text", Filterable: true, Sortable: true},
	{ID: "result", Name: "結果", Type: "text", Filterable: false, Sortable: true},
	{ID: "report", Name: "レポート", Type: "text", Filterable: false, Sortable: true},
	{ID: "progress", Name: "進捗", Type: "text", Filterable: true, Sortable: true},
	{ID: "system_type", Name: "システム種別", Type: "text", Filterable: true, Sortable: true},
	{ID: "product", Name: "製品", Type: "text", Filterable: true, Sortable: true},
	{ID: "reception_moddt", Name: "削除フラグ日時", Type: "datetime", Filterable: true, Sortable: true},
	{ID: "reception_datetime", Name: "受付日時", Type: "datetime", Filterable: true, Sortable: true},
	{ID: "update_datetime", Name: "更新日時", Type: "datetime", Filterable: true, Sortable: true},
}
