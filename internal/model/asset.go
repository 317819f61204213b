package model

// Asset is an immutable identity for a tradeable instrument: a unique
// code plus an optional display name. Assets are created by the ETL
// import and never deleted in normal operation.
type Asset struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
