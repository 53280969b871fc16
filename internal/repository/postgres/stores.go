package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/egannguyen/inventory-ledger/internal/entity"
)

// storesColumn maps the embedded store list onto a JSONB column.
type storesColumn []entity.StoreStock

func (c storesColumn) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal([]entity.StoreStock(c))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stores: %w", err)
	}
	return b, nil
}

func (c *storesColumn) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*c = storesColumn{}
		return nil
	default:
		return fmt.Errorf("unsupported stores column type %T", src)
	}

	var stores []entity.StoreStock
	if err := json.Unmarshal(raw, &stores); err != nil {
		return fmt.Errorf("failed to unmarshal stores: %w", err)
	}
	if stores == nil {
		stores = []entity.StoreStock{}
	}
	*c = stores
	return nil
}
