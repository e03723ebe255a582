package refcache

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"fantasygw/internal/domain"
)

func TestDecodeCatalog_ArrayAndKeyedShapesAgree(t *testing.T) {
	array := `[
		{"player_id":"2","first_name":"Josh","last_name":"Allen","position":"QB","team":"BUF","active":true},
		{"player_id":1,"full_name":"Derrick Henry","position":"RB","team":"BAL","status":"Active"}
	]`
	keyed := `{
		"1": {"full_name":"Derrick Henry","position":"RB","team":"BAL","status":"Active"},
		"2": {"id":"2","first_name":"Josh","last_name":"Allen","position":"QB","team":"BUF","active":true}
	}`

	fromArray, err := DecodeCatalog([]byte(array))
	require.NoError(t, err)
	fromKeyed, err := DecodeCatalog([]byte(keyed))
	require.NoError(t, err)

	want := []domain.PlayerRecord{
		{ID: "1", FullName: "Derrick Henry", Position: "RB", Team: "BAL", Active: true},
		{ID: "2", FullName: "Josh Allen", FirstName: "Josh", LastName: "Allen", Position: "QB", Team: "BUF", Active: true},
	}
	if diff := cmp.Diff(want, fromArray.Records()); diff != "" {
		t.Fatalf("array shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, fromKeyed.Records()); diff != "" {
		t.Fatalf("keyed shape mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCatalog_DropsRecordsWithoutID(t *testing.T) {
	index, err := DecodeCatalog([]byte(`[{"full_name":"Nobody"},{"player_id":"7","full_name":"Somebody","active":false}]`))
	require.NoError(t, err)
	require.Len(t, index, 1)
	record, ok := index.Lookup("7")
	require.True(t, ok)
	require.False(t, record.Active)
}

func TestDecodeCatalog_RejectsOtherShapes(t *testing.T) {
	for _, raw := range []string{`"players"`, `42`, `null`, `{"truncated":`, ``} {
		_, err := DecodeCatalog([]byte(raw))
		require.Error(t, err, raw)
	}
}

func TestEncodeCatalog_RoundTripsCanonicalList(t *testing.T) {
	index := domain.NewPlayerIndex([]domain.PlayerRecord{
		{ID: "9", FullName: "Ja'Marr Chase", Position: "WR", Team: "CIN", Active: true},
		{ID: "3", FullName: "Lamar Jackson", Position: "QB", Team: "BAL", Active: true},
	})

	encoded, err := EncodeCatalog(index)
	require.NoError(t, err)
	require.Equal(t, byte('['), encoded[0])

	decoded, err := DecodeCatalog([]byte(encoded))
	require.NoError(t, err)
	require.Equal(t, index, decoded)
}
