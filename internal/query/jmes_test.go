package query

import (
	"clientsvc/internal/types"
	"testing"

	"github.com/stretchr/testify/suite"
)

type QueryTestSuite struct {
	suite.Suite

	records []types.Record
}

func TestQueryTestSuite(t *testing.T) {
	suite.Run(t, new(QueryTestSuite))
}

func (s *QueryTestSuite) SetupTest() {
	s.records = []types.Record{
		{"id": "1", "fullName": "Alice Smith", "isActive": true, "tags": []any{"vip"}},
		{"id": "2", "fullName": "Bob Jones", "isActive": false, "tags": []any{}},
		{"id": "3", "fullName": "Carol King", "isActive": true},
	}
}

func (s *QueryTestSuite) ids(records []types.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

func (s *QueryTestSuite) TestSelect() {
	cases := map[string][]string{
		"":                           {"1", "2", "3"},
		"isActive":                   {"1", "3"},
		"fullName == 'Bob Jones'":    {"2"},
		"starts_with(fullName, 'C')": {"3"},
		"tags":                       {"1"},
		"missing":                    {},
	}
	for expr, want := range cases {
		got, err := Select(expr, s.records)
		s.Require().NoError(err, expr)
		s.Equal(want, s.ids(got), expr)
	}
}

func (s *QueryTestSuite) TestInvalidExpression() {
	_, err := Select("fullName ==", s.records)
	s.ErrorIs(err, types.ErrInvalidInput)
}

func (s *QueryTestSuite) TestEvalString() {
	v, err := EvalString("fullName", s.records[0])
	s.Require().NoError(err)
	s.Equal("Alice Smith", *v)

	v, err = EvalString("isActive", s.records[0])
	s.Require().NoError(err)
	s.Equal("true", *v)

	v, err = EvalString("nope", s.records[0])
	s.Require().NoError(err)
	s.Nil(v)
}
