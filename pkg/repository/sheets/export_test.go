package sheets

var (
	ColumnName      = columnName
	ParseUpdatedRow = parseUpdatedRow
)
