// Package query builds the parameterized SQL used to list and search bookings.
package query

import (
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	bookingDomain "github.com/slotbook/service-booking/internal/domain/booking"
	"github.com/slotbook/service-booking/pkg/domain"
)

const (
	dialectPostgres = "postgres"

	TableBookings = "bookings"

	ColID            = "id"
	ColCustomerName  = "customer_name"
	ColCustomerEmail = "customer_email"
	ColCustomerPhone = "customer_phone"
	ColDate          = "date"
	ColTime          = "time"
	ColDescription   = "description"
	ColVersion       = "version"
	ColCreatedAt     = "created_at"
	ColUpdatedAt     = "updated_at"

	aliasCount = "total"
)

// ErrBuildingQueryFailed wraps goqu generation failures.
var ErrBuildingQueryFailed = errors.New("building query failed")

var bookingColumns = []interface{}{
	ColID, ColCustomerName, ColCustomerEmail, ColCustomerPhone, ColDate, ColTime,
	ColDescription, ColVersion, ColCreatedAt, ColUpdatedAt,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Statement is a SQL string with its positional arguments.
type Statement struct {
	SQL  string
	Args []interface{}
}

// Listing is the COUNT/SELECT pair for one page of a filtered list. Both
// statements share the same predicate.
type Listing struct {
	Count  Statement
	Select Statement
}

// ParseListParams validates raw list parameters into a ListFilter. Blank
// dateFilter and customer mean "no filter".
func ParseListParams(page, limit int, dateFilter, customer string) (bookingDomain.ListFilter, error) {
	var details []domain.FieldError
	if page < 1 {
		details = append(details, domain.FieldError{Field: "page", Message: "page must be a positive number"})
	}
	if limit < 1 {
		details = append(details, domain.FieldError{Field: "limit", Message: "limit must be a positive number"})
	}
	if !domain.OffsetFits(page, limit) {
		details = append(details, domain.FieldError{Field: "page", Message: "page is too large for the given limit"})
	}

	filter := bookingDomain.ListFilter{Page: page, Limit: limit, Customer: customer}
	if strings.TrimSpace(dateFilter) != "" {
		d, err := bookingDomain.ParseDate(dateFilter)
		if err != nil {
			details = append(details, domain.FieldError{Field: "date_filter", Message: "invalid date format, use YYYY-MM-DD"})
		} else {
			filter.Date = &d
		}
	}

	if len(details) > 0 {
		return bookingDomain.ListFilter{}, domain.NewFieldValidationError("invalid list parameters", details...)
	}
	return filter, nil
}

// BuildList produces the COUNT and page SELECT for filter, newest first.
func BuildList(filter bookingDomain.ListFilter) (Listing, error) {
	if filter.Page < 1 || filter.Limit < 1 {
		return Listing{}, domain.NewValidationError("page & limit must be positive numbers")
	}
	if !domain.OffsetFits(filter.Page, filter.Limit) {
		return Listing{}, domain.NewFieldValidationError("invalid list parameters",
			domain.FieldError{Field: "page", Message: "page is too large for the given limit"})
	}

	builder := goqu.Dialect(dialectPostgres)
	where := listPredicates(filter)

	countStmt := builder.
		From(TableBookings).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star()).As(aliasCount)).
		Where(where...)

	selectStmt := builder.
		From(TableBookings).
		Prepared(true).
		Select(bookingColumns...).
		Where(where...).
		Order(goqu.I(ColID).Desc()).
		Limit(uint(filter.Limit)).
		Offset(uint(domain.Offset(filter.Page, filter.Limit)))

	count, err := toStatement(countStmt)
	if err != nil {
		return Listing{}, err
	}
	sel, err := toStatement(selectStmt)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Count: count, Select: sel}, nil
}

// BuildNameSearch selects every booking whose customer name contains term,
// ignoring case.
func BuildNameSearch(term string) (Statement, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(TableBookings).
		Prepared(true).
		Select(bookingColumns...).
		Where(goqu.C(ColCustomerName).ILike(containsPattern(term))).
		Order(goqu.I(ColID).Desc())

	return toStatement(stmt)
}

func listPredicates(filter bookingDomain.ListFilter) []exp.Expression {
	where := make([]exp.Expression, 0, 2)
	if filter.Date != nil {
		where = append(where, goqu.C(ColDate).Eq(filter.Date.Format(bookingDomain.DateLayout)))
	}
	if filter.Customer != "" {
		where = append(where, goqu.C(ColCustomerName).Like(containsPattern(filter.Customer)))
	}
	return where
}

// containsPattern builds a LIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func toStatement(ds *goqu.SelectDataset) (Statement, error) {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return Statement{}, errors.Join(ErrBuildingQueryFailed, err)
	}
	return Statement{SQL: sql, Args: args}, nil
}
