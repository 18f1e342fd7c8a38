package ingest

import (
	"strings"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/models"
)

// DuplicatePolicy decides what a left row receives when several right rows
// share its key.
type DuplicatePolicy string

const (
	// DuplicatesCollapse merges all matching right rows: each column holds the
	// distinct non-null values joined with ", " in first-seen order.
	DuplicatesCollapse DuplicatePolicy = "collapse"
	// DuplicatesFirst attaches the first matching right row only.
	DuplicatesFirst DuplicatePolicy = "first"
)

// ParseDuplicatePolicy maps configuration text to a policy, defaulting to collapse.
func ParseDuplicatePolicy(s string) DuplicatePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(DuplicatesFirst)) {
		return DuplicatesFirst
	}
	return DuplicatesCollapse
}

// JoinKey is the column two sources were joined on.
type JoinKey string

const (
	JoinNone  JoinKey = "none"
	JoinID    JoinKey = "id"
	JoinTitle JoinKey = "title"
)

// joinKeyPrecedence is checked in order, regardless of column order.
var joinKeyPrecedence = []JoinKey{JoinID, JoinTitle}

const collapseSeparator = ", "

// collisionSuffix is appended to right columns whose name is already taken.
const collisionSuffix = "_right"

// MergeResult is the outcome of combining two tables.
type MergeResult struct {
	Table   *models.Table
	Key     JoinKey
	Warning *apperrors.WarnNoJoinKey
}

// SelectJoinKey returns the first shared key column, or JoinNone.
func SelectJoinKey(left, right *models.Table) JoinKey {
	for _, key := range joinKeyPrecedence {
		if left.HasColumn(string(key)) && right.HasColumn(string(key)) {
			return key
		}
	}
	return JoinNone
}

// Merge left-joins right onto left. Every left row appears exactly once, in
// order; rows without a match get null right cells. Without a shared key the
// left table is returned unchanged together with a WarnNoJoinKey.
func Merge(left, right *models.Table, leftName, rightName string, policy DuplicatePolicy) MergeResult {
	key := SelectJoinKey(left, right)
	if key == JoinNone {
		return MergeResult{
			Table:   left,
			Key:     JoinNone,
			Warning: apperrors.NewNoJoinKeyWarning(leftName, rightName),
		}
	}

	keyName := string(key)
	leftKey, _ := left.ColumnIndex(keyName)
	rightKey, _ := right.ColumnIndex(keyName)

	// Right non-key columns, renamed on collision.
	taken := make(map[string]bool, len(left.Columns)+len(right.Columns))
	for _, c := range left.Columns {
		taken[c] = true
	}
	columns := append([]string(nil), left.Columns...)
	var rightCols []int
	for j, c := range right.Columns {
		if j == rightKey {
			continue
		}
		name := c
		for taken[name] {
			name += collisionSuffix
		}
		taken[name] = true
		columns = append(columns, name)
		rightCols = append(rightCols, j)
	}

	matches := indexRight(right, rightKey, rightCols, policy)

	rows := make([]models.Row, len(left.Rows))
	width := len(columns)
	for i, lr := range left.Rows {
		row := make(models.Row, width)
		copy(row, lr)
		if k, ok := joinValue(lr, leftKey); ok {
			if attached, found := matches[k]; found {
				copy(row[len(left.Columns):], attached)
			}
		}
		rows[i] = row
	}

	return MergeResult{Table: models.NewTable(columns, rows), Key: key}
}

// joinValue returns the trimmed key of a row. Null or blank keys never match.
func joinValue(r models.Row, idx int) (string, bool) {
	if idx >= len(r) || !r[idx].Valid {
		return "", false
	}
	v := strings.TrimSpace(r[idx].Value)
	return v, v != ""
}

// indexRight groups the right rows by key and reduces each group to the
// cells attached to matching left rows.
func indexRight(right *models.Table, keyIdx int, cols []int, policy DuplicatePolicy) map[string]models.Row {
	groups := make(map[string][]models.Row)
	for _, r := range right.Rows {
		k, ok := joinValue(r, keyIdx)
		if !ok {
			continue
		}
		if policy == DuplicatesFirst && len(groups[k]) > 0 {
			continue
		}
		groups[k] = append(groups[k], r)
	}

	out := make(map[string]models.Row, len(groups))
	for k, group := range groups {
		attached := make(models.Row, len(cols))
		for c, j := range cols {
			attached[c] = collapseColumn(group, j)
		}
		out[k] = attached
	}
	return out
}

func collapseColumn(group []models.Row, j int) models.Cell {
	if len(group) == 1 {
		if j < len(group[0]) {
			return group[0][j]
		}
		return models.NullCell
	}

	seen := make(map[string]bool, len(group))
	var values []string
	for _, r := range group {
		if j >= len(r) || !r[j].Valid {
			continue
		}
		v := r[j].Value
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	if len(values) == 0 {
		return models.NullCell
	}
	return models.NewCell(strings.Join(values, collapseSeparator))
}
