// Package catalog defines the movie catalog records shown in data grids
// and typed entity lists over them.
package catalog

import (
	"github.com/canectors/gridfilter/pkg/entitylist"
)

// Movie is one catalog entry.
type Movie struct {
	Name   string   `json:"name" yaml:"name"`
	Year   int      `json:"year" yaml:"year"`
	Rate   float64  `json:"rate" yaml:"rate"`
	Awards []string `json:"awards" yaml:"awards"`
}

// Category groups movies under a name.
type Category struct {
	Name   string  `json:"name" yaml:"name"`
	Movies []Movie `json:"movies" yaml:"movies"`
}

// MovieList is an entity list of movies.
type MovieList = entitylist.List[Movie]

// CategoryList is an entity list of categories.
type CategoryList = entitylist.List[Category]

// NewMovieList creates an entity list over movies, searched by name.
func NewMovieList(movies []Movie, opts ...entitylist.Option) *MovieList {
	return entitylist.New(movies, opts...)
}

// NewCategoryList creates an entity list over categories, searched by name.
func NewCategoryList(categories []Category, opts ...entitylist.Option) *CategoryList {
	return entitylist.New(categories, opts...)
}
