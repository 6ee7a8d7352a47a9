package cli

import (
	"errors"
	"flag"

	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/smallbiznis/stockroom/internal/importer"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	reportdomain "github.com/smallbiznis/stockroom/internal/report/domain"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var operatorMessages = []struct {
	err error
	msg string
}{
	{inventorydomain.ErrInsufficientStock, "not enough stock"},
	{inventorydomain.ErrMissingBaseline, "product has no opening inventory record"},
	{inventorydomain.ErrNoRecord, "product has never been stocked"},
	{inventorydomain.ErrDuplicateSale, "a sale is already recorded for that date; use update"},
	{inventorydomain.ErrInvalidUnits, "units sold must be a positive whole number"},
	{inventorydomain.ErrInvalidPrice, "unit price cannot be negative"},
	{inventorydomain.ErrInvalidQuantity, "initial quantity cannot be negative"},
	{productdomain.ErrNotFound, "product not found"},
	{productdomain.ErrDuplicateID, "product id already exists"},
	{productdomain.ErrInvalidID, "product id must be positive"},
	{productdomain.ErrInvalidName, "product name is required"},
	{productdomain.ErrInvalidCategory, "product category is required"},
	{productdomain.ErrNothingToUpdate, "nothing to update; pass -sold, -price or -initial"},
	{reportdomain.ErrUnknownColumn, "unknown report column"},
	{reportdomain.ErrInvalidOrder, "sort order must be ASC or DESC"},
	{importer.ErrMissingColumn, "import file is missing a required column"},
	{importer.ErrUnsupportedFormat, "import file must be .csv or .xlsx"},
	{authdomain.ErrInvalidCredentials, "invalid username or password"},
	{authdomain.ErrUserExists, "username already taken"},
	{authdomain.ErrInvalidUsername, "invalid username"},
	{authdomain.ErrWeakPassword, "password must be at least 8 characters"},
}

// Describe turns a command error into the line shown to the operator and the
// process exit code. The wrapped detail is kept after the message.
func Describe(err error) (string, int) {
	if err == nil {
		return "", ExitOK
	}
	if errors.Is(err, flag.ErrHelp) {
		return "", ExitOK
	}
	for _, usage := range []error{ErrUsage, ErrUnknownCommand, ErrInvalidFlag, calendar.ErrMalformedDate} {
		if errors.Is(err, usage) {
			return err.Error(), ExitUsage
		}
	}
	for _, m := range operatorMessages {
		if errors.Is(err, m.err) {
			if err.Error() == m.err.Error() {
				return m.msg, ExitFailure
			}
			return m.msg + " (" + err.Error() + ")", ExitFailure
		}
	}
	return err.Error(), ExitFailure
}
