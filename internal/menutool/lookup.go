package menutool

import (
	"context"
	"fmt"
	"strings"

	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/common/metrics"
	"resto-chatbot/internal/common/observability"
)

// Lookup runs a menu query and always answers with an envelope.
type Lookup interface {
	Lookup(ctx context.Context, p Params) Envelope
}

// SQLLookup queries the menus table directly.
type SQLLookup struct {
	db     *database.SQLClient
	logger logger.Logger
}

func NewSQLLookup(db *database.SQLClient, log logger.Logger) *SQLLookup {
	return &SQLLookup{db: db, logger: logger.Component(log, "menu-lookup")}
}

func (l *SQLLookup) Lookup(ctx context.Context, p Params) Envelope {
	ctx, span := observability.StartSpan(ctx, "menutool.SQLLookup")

	query, args := BuildSQL(p, l.db.Dialect)
	rows, err := l.db.QueryMaps(ctx, query, args...)
	observability.EndSpan(span, err)
	if err != nil {
		l.logger.Error("Menu lookup failed", map[string]interface{}{"error": err})
		return errorEnvelope(err)
	}

	metrics.QueryRows.WithLabelValues(metrics.PathAgent).Observe(float64(len(rows)))
	return successEnvelope(rows)
}

// BuildSQL renders the lookup as a parameterized SELECT. Category and
// search are substring matches; search is OR-ed across name and description.
func BuildSQL(p Params, d database.Dialect) (string, []interface{}) {
	var (
		args  []interface{}
		where []string
	)
	bind := func(v interface{}) string {
		args = append(args, v)
		return d.Placeholder(len(args))
	}
	like := d.LikeOperator()

	if p.Category != "" {
		where = append(where, fmt.Sprintf("%s %s %s", d.QuoteIdent("category"), like, bind("%"+p.Category+"%")))
	}
	if p.PriceRange != nil {
		if p.PriceRange.Min != nil {
			where = append(where, fmt.Sprintf("%s >= %s", d.QuoteIdent("price"), bind(*p.PriceRange.Min)))
		}
		if p.PriceRange.Max != nil {
			where = append(where, fmt.Sprintf("%s <= %s", d.QuoteIdent("price"), bind(*p.PriceRange.Max)))
		}
	}
	if p.Search != "" {
		term := "%" + p.Search + "%"
		where = append(where, fmt.Sprintf("(%s %s %s OR %s %s %s)",
			d.QuoteIdent("name"), like, bind(term),
			d.QuoteIdent("description"), like, bind(term)))
	}

	cols := make([]string, len(MenuColumns))
	for i, c := range MenuColumns {
		cols[i] = d.QuoteIdent(c)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(d.QuoteIdent("menus"))
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	if col, dir, ok := p.Ordering(); ok {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(d.QuoteIdent(col))
		sb.WriteString(" ")
		sb.WriteString(strings.ToUpper(dir))
	}
	sb.WriteString(" LIMIT ")
	sb.WriteString(bind(p.EffectiveLimit()))

	return sb.String(), args
}
