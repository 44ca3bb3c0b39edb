package where_test

import (
	"testing"
	"time"

	. "github.com/tobsdb/flatdb/internal/where"
	"gotest.tools/assert"
)

func TestParseOperator(t *testing.T) {
	assert.Equal(t, ParseOperator("not   like"), OpNotLike)
	assert.Equal(t, ParseOperator("<>"), OpNotEqual)
	assert.Equal(t, ParseOperator("lte"), OpLessOrEqual)
	assert.Equal(t, ParseOperator("In"), OpIn)
	assert.Equal(t, ParseOperator("rlike"), OpRegex)
	assert.Equal(t, ParseOperator("between"), Operator("between"))
	for _, op := range VALID_OPERATORS {
		assert.Assert(t, op.IsKnown())
		assert.Equal(t, ParseOperator(string(op)), op)
	}
}

func TestLikeToRegex(t *testing.T) {
	assert.Equal(t, LikeToRegex("a%b_"), "(?is)^(?:a.*b.)$")
	assert.Equal(t, LikeToRegex("1+1"), `(?is)^(?:1\+1)$`)
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, Canonical(map[string]any{"z": 1, "a": true}), `{"a":true,"z":1}`)
	assert.Equal(t, Canonical([]any{1, "2"}), `[1,"2"]`)
	assert.Equal(t, Canonical("x"), "x")
	assert.Assert(t, Canonical(nil) == nil)
}

func TestCompareValues(t *testing.T) {
	cmp, ok := CompareValues(1, 2.5)
	assert.Assert(t, ok)
	assert.Equal(t, cmp, -1)

	cmp, ok = CompareValues("b", "a")
	assert.Assert(t, ok)
	assert.Equal(t, cmp, 1)

	now := time.Now()
	cmp, ok = CompareValues(now, now.Add(time.Second))
	assert.Assert(t, ok)
	assert.Equal(t, cmp, -1)

	cmp, ok = CompareValues(false, true)
	assert.Assert(t, ok)
	assert.Equal(t, cmp, -1)

	_, ok = CompareValues(1, "1")
	assert.Assert(t, !ok)
	_, ok = CompareValues(nil, 1)
	assert.Assert(t, !ok)
}

func TestEqual(t *testing.T) {
	assert.Assert(t, Equal(1, 1.0))
	assert.Assert(t, Equal(nil, nil))
	assert.Assert(t, !Equal(nil, 0))
	assert.Assert(t, Equal([]any{1}, "[1]"))
	assert.Assert(t, !Equal("1", 1))
}

func TestRow(t *testing.T) {
	row := NewRow(map[string]any{"Name": "x"})
	v, ok := row.Lookup("nAmE")
	assert.Assert(t, ok)
	assert.Equal(t, v, "x")

	merged := row.Merge("u", NewRow(map[string]any{"name": "y", "other": 1}))
	assert.Equal(t, merged.Get("name"), "x")
	assert.Equal(t, merged.Get("OTHER"), 1)
	assert.Equal(t, merged.Get("u.name"), "y")
	assert.Equal(t, merged.Get("U.OTHER"), 1)

	assert.DeepEqual(t, merged.Pick("other", "nope"), Row{"OTHER": 1})
}

func TestParseColumnRef(t *testing.T) {
	assert.Equal(t, ParseColumnRef("t.a"), Qualified("t", "a"))
	assert.Equal(t, ParseColumnRef("a"), Unqualified("a"))
	assert.Equal(t, ParseColumnRef(".a"), Unqualified(".a"))
	assert.Equal(t, ParseColumnRef("a."), Unqualified("a."))
	assert.Equal(t, Qualified("t", "a").String(), "t.a")
}
