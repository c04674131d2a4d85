package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canectors/gridfilter/internal/modules/filter"
	"github.com/canectors/gridfilter/pkg/grid"
)

func movieSchema() grid.Schema {
	return filter.DeriveSchema([]map[string]interface{}{
		{
			"name":     "X",
			"year":     2000,
			"rate":     5,
			"seen":     true,
			"tags":     []interface{}{"drama"},
			"director": map[string]interface{}{"name": "Ann"},
		},
	})
}

func TestCreateFilter_Valid(t *testing.T) {
	tests := []struct {
		name     string
		desc     grid.FilterDescriptor
		wantKind filter.Kind
		wantStr  string
	}{
		{"equality string", grid.Equality("name", "X"), filter.KindEquality, `name == "X"`},
		{"equality number", grid.Equality("year", 2000), filter.KindEquality, "year == 2000"},
		{"equality bool", grid.Equality("seen", true), filter.KindEquality, "seen == true"},
		{"range", grid.Range("rate", 6, 10), filter.KindRange, "rate in [6, 10]"},
		{"range with float bounds", grid.Range("rate", 6.5, 7.25), filter.KindRange, "rate in [6.5, 7.25]"},
		{"values set", grid.ValuesSet("name", "X", "Y"), filter.KindValuesSet, `name in {"X", "Y"}`},
		{"empty values set", grid.ValuesSet("name"), filter.KindValuesSet, "name in {}"},
		{"legacy equality tag", grid.FilterDescriptor{Kind: grid.LegacyEqualityTag, FieldName: "name", Value: "X"}, filter.KindEquality, `name == "X"`},
		{"legacy range tag", grid.FilterDescriptor{Kind: grid.LegacyRangeTag, FieldName: "year", Value: 1990, ValueTo: 2000}, filter.KindRange, "year in [1990, 2000]"},
		{"nested path", grid.Equality("director.name", "Ann"), filter.KindEquality, `director.name == "Ann"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CreateFilter(0, tt.desc, movieSchema(), Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, f.Kind())
			assert.Equal(t, tt.wantStr, f.String())
		})
	}
}

func TestCreateFilter_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		desc    grid.FilterDescriptor
		wantErr error
	}{
		{"unknown field", grid.Equality("genre", "drama"), grid.ErrInvalidField},
		{"unknown nested root", grid.Equality("studio.name", "A24"), grid.ErrInvalidField},
		{"invalid path", grid.Equality("tags[x]", "drama"), grid.ErrInvalidField},
		{"equality on list field", grid.Equality("tags", "drama"), grid.ErrInvalidField},
		{"equality missing value", grid.Equality("name", nil), grid.ErrMalformedDescriptor},
		{"equality number on string field", grid.Equality("name", 5), grid.ErrMalformedDescriptor},
		{"equality string on number field", grid.Equality("year", "2000"), grid.ErrMalformedDescriptor},
		{"equality non-scalar value", grid.Equality("name", []string{"X"}), grid.ErrMalformedDescriptor},
		{"empty field name", grid.Equality("", "X"), grid.ErrMalformedDescriptor},
		{"range on string field", grid.Range("name", 1, 2), grid.ErrInvalidField},
		{"range on bool field", grid.Range("seen", 0, 1), grid.ErrInvalidField},
		{"range missing valueTo", grid.FilterDescriptor{Kind: grid.KindRange, FieldName: "rate", Value: 6}, grid.ErrMalformedDescriptor},
		{"range missing value", grid.FilterDescriptor{Kind: grid.KindRange, FieldName: "rate", ValueTo: 6}, grid.ErrMalformedDescriptor},
		{"range string bound", grid.Range("rate", "6", 10), grid.ErrMalformedDescriptor},
		{"values set missing values", grid.FilterDescriptor{FieldName: "name"}, grid.ErrMalformedDescriptor},
		{"values set member mismatch", grid.ValuesSet("year", 2000, "2010"), grid.ErrMalformedDescriptor},
		{"values set non-scalar member", grid.ValuesSet("name", map[string]interface{}{}), grid.ErrMalformedDescriptor},
		{"values set on list field", grid.ValuesSet("tags", "drama"), grid.ErrInvalidField},
		{"unknown kind", grid.FilterDescriptor{Kind: "between", FieldName: "rate", Values: []interface{}{5}}, grid.ErrUnknownDescriptorKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateFilter(3, tt.desc, movieSchema(), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var descErr *grid.DescriptorError
			require.True(t, errors.As(err, &descErr))
			assert.Equal(t, 3, descErr.Index)
			assert.Equal(t, tt.desc.FieldName, descErr.FieldName)
		})
	}
}

func TestCreateFilter_Permissive(t *testing.T) {
	d := grid.FilterDescriptor{Kind: "between", FieldName: "name", Values: []interface{}{"X"}}

	f, err := CreateFilter(0, d, movieSchema(), Options{Permissive: true})
	require.NoError(t, err)
	assert.Equal(t, filter.KindValuesSet, f.Kind())
	assert.Equal(t, `name in {"X"}`, f.String())

	t.Run("still validates the values", func(t *testing.T) {
		_, err := CreateFilter(0, grid.FilterDescriptor{Kind: "between", FieldName: "name"}, movieSchema(), Options{Permissive: true})
		assert.ErrorIs(t, err, grid.ErrMalformedDescriptor)
	})
}

func TestCreateFilter_EmptySchemaSkipsFieldChecks(t *testing.T) {
	f, err := CreateFilter(0, grid.Equality("anything", 5), grid.Schema{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "anything", f.Field())

	f, err = CreateFilter(0, grid.Range("anything", 1, 2), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, filter.KindRange, f.Kind())

	// value shape is still checked
	_, err = CreateFilter(0, grid.Equality("anything", []int{1}), nil, Options{})
	assert.ErrorIs(t, err, grid.ErrMalformedDescriptor)
}

func TestCreateFilter_MixedFieldAcceptsEitherType(t *testing.T) {
	schema := grid.Schema{"year": grid.FieldMixed}

	_, err := CreateFilter(0, grid.Equality("year", "n/a"), schema, Options{})
	assert.NoError(t, err)
	_, err = CreateFilter(0, grid.Range("year", 1990, 2000), schema, Options{})
	assert.NoError(t, err)
}

func TestCreateFilters(t *testing.T) {
	t.Run("preserves order", func(t *testing.T) {
		filters, err := CreateFilters([]grid.FilterDescriptor{
			grid.Range("rate", 6, 10),
			grid.ValuesSet("year", 2000),
			grid.Equality("name", "X"),
		}, movieSchema(), Options{})
		require.NoError(t, err)
		require.Len(t, filters, 3)
		assert.Equal(t, filter.KindRange, filters[0].Kind())
		assert.Equal(t, filter.KindValuesSet, filters[1].Kind())
		assert.Equal(t, filter.KindEquality, filters[2].Kind())
	})

	t.Run("empty input", func(t *testing.T) {
		filters, err := CreateFilters(nil, movieSchema(), Options{})
		require.NoError(t, err)
		assert.Empty(t, filters)
	})

	t.Run("first rejection wins", func(t *testing.T) {
		filters, err := CreateFilters([]grid.FilterDescriptor{
			grid.Equality("name", "X"),
			grid.Equality("genre", "drama"),
			grid.FilterDescriptor{Kind: "between", FieldName: "rate"},
		}, movieSchema(), Options{})
		assert.Nil(t, filters)
		assert.ErrorIs(t, err, grid.ErrInvalidField)
		assert.Contains(t, err.Error(), "descriptor 1")
		assert.Contains(t, err.Error(), `"genre"`)
	})
}

func TestCreateSearchFilter(t *testing.T) {
	f, err := CreateSearchFilter("X", "name", movieSchema())
	require.NoError(t, err)
	assert.Equal(t, grid.Equality("name", "X"), f.Descriptor())

	_, err = CreateSearchFilter("X", "genre", movieSchema())
	require.Error(t, err)
	assert.ErrorIs(t, err, grid.ErrInvalidField)
	assert.Contains(t, err.Error(), "search term")

	var descErr *grid.DescriptorError
	require.True(t, errors.As(err, &descErr))
	assert.Equal(t, -1, descErr.Index)
}
