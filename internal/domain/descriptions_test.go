package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptions_KeepsKeyOrder(t *testing.T) {
	raw := `{"zeta":"1","websiteLink":"https://example.com","alpha":"2"}`

	var d Descriptions
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestDescriptions_UnmarshalSkipsNullAndRejectsNonString(t *testing.T) {
	var d Descriptions
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":"x","b":"y"}`), &d))
	assert.Equal(t, Descriptions{{Key: "b", Value: "y"}}, d)

	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &d))
}

func TestDescriptions_SetReplacesInPlace(t *testing.T) {
	d := Descriptions{}.Set("a", "1").Set("b", "2").Set("a", "3")
	assert.Equal(t, Descriptions{{Key: "a", Value: "3"}, {Key: "b", Value: "2"}}, d)

	d = d.Delete("a")
	assert.Equal(t, Descriptions{{Key: "b", Value: "2"}}, d)
}

func TestDescriptions_ShortcutsAndAnnotations(t *testing.T) {
	d := Descriptions{
		{Key: "Floor", Value: "2"},
		{Key: DescriptionKeyQRCodeImageURL, Value: "https://qr/img.png"},
		{Key: DescriptionKeyWebsiteLink, Value: "https://shop"},
	}

	s := d.Shortcuts()
	assert.Equal(t, "https://shop", s.WebsiteLink)
	assert.Equal(t, "https://qr/img.png", s.QRCodeImageURL)
	assert.Empty(t, s.QRCodeDestinationURL)
	assert.False(t, s.IsEmpty())

	assert.Equal(t, Descriptions{{Key: "Floor", Value: "2"}}, d.Annotations())
	assert.True(t, Descriptions{}.Shortcuts().IsEmpty())
}

func TestDescriptions_ValueAndScan(t *testing.T) {
	var nilDesc Descriptions
	v, err := nilDesc.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	var d Descriptions
	require.NoError(t, d.Scan([]byte(`{"b":"1","a":"2"}`)))
	assert.Equal(t, "b", d[0].Key)

	require.NoError(t, d.Scan(nil))
	assert.Empty(t, d)

	assert.Error(t, d.Scan(42))
}

func TestLocation_JSONShape(t *testing.T) {
	mode := PowerModeAlt1
	l := &Location{
		ID:           1,
		Code:         43,
		Location:     "Mall",
		Delivery:     "Daily",
		PowerMode:    &mode,
		Descriptions: Descriptions{{Key: "k", Value: "v"}},
		RouteID:      2,
	}

	out, err := json.Marshal(l)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "alt1", m["powerMode"])
	assert.Equal(t, float64(2), m["routeId"])
	assert.Equal(t, map[string]interface{}{"k": "v"}, m["descriptionsObj"])
}

func TestLocation_CloneIsDeep(t *testing.T) {
	color := "#ff0000"
	mode := PowerModeDaily
	l := &Location{Color: &color, PowerMode: &mode, Descriptions: Descriptions{{Key: "a", Value: "1"}}}

	c := l.Clone()
	*c.Color = "#000000"
	*c.PowerMode = PowerModeAlt2
	c.Descriptions[0].Value = "2"

	assert.Equal(t, "#ff0000", *l.Color)
	assert.Equal(t, PowerModeDaily, *l.PowerMode)
	assert.Equal(t, "1", l.Descriptions[0].Value)
	assert.Nil(t, (*Location)(nil).Clone())
}

func TestPendingChange_Validate(t *testing.T) {
	assert.NoError(t, PendingChange{ID: 1, Type: ChangeDelete}.Validate())
	assert.Error(t, PendingChange{ID: 1, Type: ChangeCreate}.Validate())
	assert.Error(t, PendingChange{ID: 1, Type: "move"}.Validate())
	assert.NoError(t, PendingChange{ID: -1, Type: ChangeCreate, Data: &Location{}}.Validate())
}

func TestSlug(t *testing.T) {
	assert.True(t, IsValidSlug("kl-7"))
	assert.False(t, IsValidSlug("KL 7"))
	assert.False(t, IsValidSlug("kl--7"))
	assert.False(t, IsValidSlug("-kl"))
	assert.Equal(t, "kl-7-north", Slugify("  KL 7 / North "))
}

func TestNewDuplicateCheckResult(t *testing.T) {
	r := NewDuplicateCheckResult(nil)
	assert.False(t, r.HasDuplicate)
	assert.NotNil(t, r.Duplicates)

	r = NewDuplicateCheckResult([]DuplicateLocation{{ID: 1, Code: 43}})
	assert.True(t, r.HasDuplicate)
}
