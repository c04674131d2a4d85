// Package entitylist provides the stateful filter pipeline behind searchable
// and filterable data grids.
//
// A List owns an immutable original record slice and an ordered sequence of
// active filters. Every operation recomputes the result by folding the
// active filters over the original slice:
//
//	movies := entitylist.New(records)
//	movies.ApplySearchValue("Heat")                 // name == "Heat"
//	movies.ApplyFiltersValue([]grid.FilterDescriptor{
//	    grid.Range("rate", 6, 10),
//	})                                              // name == "Heat" AND rate in [6, 10]
//	movies.ApplyFiltersValue(nil)                   // back to the full list
//
// Search terms and descriptors accumulate; only an empty descriptor list
// clears them.
//
// A List is not safe for concurrent use. Callers sharing one across
// goroutines must serialize access.
package entitylist

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/canectors/gridfilter/internal/factory"
	"github.com/canectors/gridfilter/internal/logger"
	"github.com/canectors/gridfilter/internal/modules/filter"
	"github.com/canectors/gridfilter/pkg/grid"
)

// List is a filter pipeline over records of type T.
// T is usually a struct type or grid.Record.
type List[T any] struct {
	id          string
	original    []T
	filters     []filter.Filter
	schema      grid.Schema
	searchField string
	permissive  bool
	log         *slog.Logger
}

// RecordList is a List over loosely-typed records.
type RecordList = List[grid.Record]

type options struct {
	searchField string
	permissive  bool
	schema      grid.Schema
}

// Option configures a List.
type Option func(*options)

// WithSearchField sets the field used by ApplySearchValue when no field name
// is given. Defaults to grid.DefaultSearchField.
func WithSearchField(field string) Option {
	return func(o *options) {
		if field != "" {
			o.searchField = field
		}
	}
}

// WithPermissiveDescriptors makes descriptors with an unrecognized kind tag
// act as values-set descriptors instead of being rejected.
func WithPermissiveDescriptors(permissive bool) Option {
	return func(o *options) {
		o.permissive = permissive
	}
}

// WithSchema replaces the schema derived from the records. Field names are
// validated against it; an empty schema disables field validation.
func WithSchema(schema grid.Schema) Option {
	return func(o *options) {
		o.schema = schema
	}
}

// New creates a List over a copy of records with no active filters.
func New[T any](records []T, opts ...Option) *List[T] {
	o := options{searchField: grid.DefaultSearchField}
	for _, opt := range opts {
		opt(&o)
	}

	original := slices.Clone(records)
	if original == nil {
		original = []T{}
	}
	schema := o.schema
	if schema == nil {
		schema = filter.DeriveSchema(original)
	}

	id := uuid.NewString()
	return &List[T]{
		id:          id,
		original:    original,
		filters:     []filter.Filter{},
		schema:      schema,
		searchField: o.searchField,
		permissive:  o.permissive,
		log:         logger.WithList(id),
	}
}

// NewRecordList creates a List over loosely-typed records.
func NewRecordList(records []grid.Record, opts ...Option) *RecordList {
	return New(records, opts...)
}

// ID returns the identifier attached to this list's log lines.
func (l *List[T]) ID() string {
	return l.id
}

// Len returns the number of records in the original list.
func (l *List[T]) Len() int {
	return len(l.original)
}

// Schema returns the field schema used to validate descriptors.
func (l *List[T]) Schema() grid.Schema {
	return l.schema
}

// Original returns a copy of the original records.
func (l *List[T]) Original() []T {
	return slices.Clone(l.original)
}

// ActiveFilters returns the active filters as descriptors, in application order.
func (l *List[T]) ActiveFilters() []grid.FilterDescriptor {
	descs := make([]grid.FilterDescriptor, 0, len(l.filters))
	for _, f := range l.filters {
		descs = append(descs, f.Descriptor())
	}
	return descs
}

// Result folds the active filters over the original records.
func (l *List[T]) Result() []T {
	return filter.Fold(l.original, l.filters)
}

// Reset clears every active filter.
func (l *List[T]) Reset() {
	l.filters = []filter.Filter{}
	l.log.Debug("filters cleared")
}

// ApplySearchValue appends an equality filter matching value on fieldName,
// or on the list's search field when fieldName is omitted, and returns the
// recomputed result. Earlier filters stay active.
//
// On error the active filters are left unchanged.
func (l *List[T]) ApplySearchValue(value interface{}, fieldName ...string) ([]T, error) {
	field := l.searchField
	if len(fieldName) > 0 && fieldName[0] != "" {
		field = fieldName[0]
	}

	f, err := factory.CreateSearchFilter(value, field, l.schema)
	if err != nil {
		l.log.Debug("search rejected", slog.String("field", field), slog.String("error", err.Error()))
		return nil, err
	}
	l.filters = append(l.filters, f)

	result := l.Result()
	l.log.Debug("search applied",
		slog.String("filter", f.String()),
		slog.Int("active_filters", len(l.filters)),
		slog.Int("records", len(result)),
	)
	return result, nil
}

// ApplyFiltersValue translates descs into filters, appends them to the active
// filters and returns the recomputed result. An empty descs clears every
// active filter, including search terms, and returns the original records.
//
// All descriptors are translated before any is appended: if one is rejected
// the active filters are left unchanged.
func (l *List[T]) ApplyFiltersValue(descs []grid.FilterDescriptor) ([]T, error) {
	if len(descs) == 0 {
		l.Reset()
		return l.Original(), nil
	}

	filters, err := factory.CreateFilters(descs, l.schema, factory.Options{Permissive: l.permissive})
	if err != nil {
		l.log.Debug("descriptors rejected", slog.Int("descriptors", len(descs)), slog.String("error", err.Error()))
		return nil, err
	}
	l.filters = append(l.filters, filters...)

	result := l.Result()
	l.log.Debug("filters applied",
		slog.Int("added", len(filters)),
		slog.Int("active_filters", len(l.filters)),
		slog.Int("records", len(result)),
	)
	return result, nil
}
