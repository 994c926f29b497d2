package models

import (
	"database/sql"
	"time"
)

// TradingRow is one line of the fixed trading table extracted from a bulletin.
//
// The parser produces it; it is immutable afterwards. Volume and Total may be
// empty in the source and therefore map to SQL NULL; Count is always numeric
// because rows failing its coercion are dropped before derivation.
//
// OilID, DeliveryBasisID and DeliveryTypeID are derived from the composite
// ExchangeProductID by fixed character offsets:
//
//	oil_id            = ExchangeProductID[0:4]
//	delivery_basis_id = ExchangeProductID[4:7]
//	delivery_type_id  = last character
type TradingRow struct {
	ExchangeProductID   string
	ExchangeProductName string
	DeliveryBasisName   string
	Volume              sql.NullInt64
	Total               sql.NullInt64
	Count               int64
	Date                time.Time
	OilID               string
	DeliveryBasisID     string
	DeliveryTypeID      string
}

// TradingResult is the stored form of a TradingRow: a surrogate id plus
// audit timestamps. The loader is the sole writer; the query API only reads.
//
// ExchangeProductName is absent: the table schema does not keep it, and the
// loader drops it during schema alignment.
type TradingResult struct {
	ID                int64
	ExchangeProductID string
	OilID             string
	DeliveryBasisID   string
	DeliveryBasisName string
	DeliveryTypeID    string
	Volume            sql.NullInt64
	Total             sql.NullInt64
	Count             int64
	Date              time.Time
	CreatedOn         time.Time
	UpdatedOn         time.Time
}
