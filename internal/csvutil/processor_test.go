package csvutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/flicklog/internal/testutil"
)

type person struct {
	Name string `csv:"name"`
	Age  int    `csv:"age"`
	City string `csv:"city,omitempty"`
}

func TestProcessCSV(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "name,age,city\nAlice,30,NYC\nBob,25,LA\n")

	parser := func(row Row) (person, error) {
		name, _ := row.Get("name")
		city, _ := row.Get("city")
		return person{Name: name, City: city}, nil
	}

	people, header, err := ProcessCSV(env.Path("test.csv"), parser, ProcessorOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "city"}, header)
	assert.Equal(t, []person{{Name: "Alice", City: "NYC"}, {Name: "Bob", City: "LA"}}, people)
}

func TestProcessCSV_StripsBOM(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("bom.csv", "\xEF\xBB\xBFname\nAlice\n")

	_, header, err := ProcessCSV(env.Path("bom.csv"), func(row Row) (string, error) {
		v, ok := row.Get("name")
		assert.True(t, ok)
		return v, nil
	}, ProcessorOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, header)
}

func TestProcessCSV_InvalidRecord(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "name\nAlice\nBob\n")

	parser := func(row Row) (string, error) {
		name, _ := row.Get("name")
		if name == "Bob" {
			return "", assert.AnError
		}
		return name, nil
	}

	_, _, err := ProcessCSV(env.Path("test.csv"), parser, ProcessorOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	items, _, err := ProcessCSV(env.Path("test.csv"), parser, ProcessorOptions{SkipInvalid: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, items)
}

func TestProcessCSV_EmptyFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("empty.csv", "")

	_, _, err := ProcessCSV(env.Path("empty.csv"), func(row Row) (string, error) { return "", nil }, ProcessorOptions{})
	assert.Error(t, err)
}

func TestProcessCSV_FileNotFound(t *testing.T) {
	_, _, err := ProcessCSV("/nonexistent/file.csv", func(row Row) (string, error) { return "", nil }, ProcessorOptions{})
	assert.Error(t, err)
}

func TestRow_GetMissingColumn(t *testing.T) {
	row := Row{index: map[string]int{"a": 0, "b": 5}, Record: []string{"x"}}

	v, ok := row.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = row.Get("b")
	assert.False(t, ok)
	_, ok = row.Get("c")
	assert.False(t, ok)
}

func TestWriteTable(t *testing.T) {
	env := testutil.NewTestEnv(t)

	err := WriteTable(env.Path("out.csv"), []string{"id", "list"}, [][]string{
		{"1", `["a", "b"]`},
		{"2", "plain"},
	})
	require.NoError(t, err)
	assert.Equal(t, "id,list\n1,\"[\"\"a\"\", \"\"b\"\"]\"\n2,plain\n", env.ReadFileString("out.csv"))
}

func TestWriteStructsDecodeStructs(t *testing.T) {
	env := testutil.NewTestEnv(t)
	rows := []person{{Name: "Alice", Age: 30, City: "NYC"}, {Name: "Bob", Age: 25}}

	require.NoError(t, WriteStructs(env.Path("people.csv"), rows))
	assert.True(t, strings.HasPrefix(env.ReadFileString("people.csv"), "name,age,city\n"))

	decoded, header, err := DecodeStructs[person](strings.NewReader(env.ReadFileString("people.csv")))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "city"}, header)
	assert.Equal(t, rows, decoded)
}

func TestDecodeStructs_Empty(t *testing.T) {
	_, _, err := DecodeStructs[person](strings.NewReader(""))
	assert.Error(t, err)
}
