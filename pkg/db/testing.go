package db

import (
	"fmt"
	"sync/atomic"

	"github.com/smallbiznis/stockroom/internal/config"
	"gorm.io/gorm"
)

var testSeq atomic.Int64

// NewTest opens an isolated in-memory sqlite database.
func NewTest() (*gorm.DB, error) {
	name := fmt.Sprintf("file:stockroom_test_%d?mode=memory&cache=shared", testSeq.Add(1))
	return Open(Config{Type: config.DBTypeSQLite, Path: name}, nil)
}
