package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() BufferedClickEntry {
	return BufferedClickEntry{
		LinkID:    "9b2f3c1e-0000-4000-8000-000000000001",
		Device:    "mobile",
		Browser:   "Safari",
		OS:        "iOS",
		Referrer:  "https://t.co/",
		Country:   "ID",
		City:      "Jakarta",
		CreatedAt: time.Date(2026, 10, 1, 8, 30, 15, 123000000, time.UTC),
	}
}

// 队列中的条目无论以文本还是对象形式取出，都应还原出相同的点击记录
func TestParseBufferedClickEntry_RoundTrip(t *testing.T) {
	entry := sampleEntry()
	text, err := entry.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))

	inputs := map[string]any{
		"string": text,
		"bytes":  []byte(text),
		"struct": entry,
		"ptr":    &entry,
		"map":    decoded,
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			parsed, err := ParseBufferedClickEntry(raw)
			require.NoError(t, err)

			event := parsed.ToClickEvent()
			assert.Equal(t, entry.LinkID, event.LinkID)
			assert.Equal(t, entry.Device, event.Device)
			assert.Equal(t, entry.Browser, event.Browser)
			assert.Equal(t, entry.OS, event.OS)
			assert.Equal(t, entry.Referrer, event.Referrer)
			assert.Equal(t, entry.Country, event.Country)
			assert.Equal(t, entry.City, event.City)
			assert.True(t, entry.CreatedAt.Equal(event.CreatedAt), "创建时间应为入队时间")
		})
	}
}

func TestParseBufferedClickEntry_Invalid(t *testing.T) {
	cases := map[string]any{
		"bad json":     "{not json",
		"missing link": `{"device":"mobile"}`,
		"nil ptr":      (*BufferedClickEntry)(nil),
		"number":       42,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBufferedClickEntry(raw)
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestLinkPassword(t *testing.T) {
	var link Link
	assert.True(t, link.CheckPassword("anything"))

	require.NoError(t, link.SetPassword("s3cret"))
	assert.True(t, link.HasPassword())
	assert.NotEqual(t, "s3cret", link.PasswordHash)
	assert.True(t, link.CheckPassword("s3cret"))
	assert.False(t, link.CheckPassword("wrong"))

	require.NoError(t, link.SetPassword(""))
	assert.False(t, link.HasPassword())
}

func TestLinkType_Valid(t *testing.T) {
	assert.True(t, LinkTypeSocial.Valid())
	assert.True(t, LinkTypeSupport.Valid())
	assert.False(t, LinkType("banner").Valid())
}

func TestLink_BeforeCreate(t *testing.T) {
	link := &Link{URL: "https://example.com"}
	require.NoError(t, link.BeforeCreate(nil))
	assert.NotEmpty(t, link.ID)
	assert.Equal(t, LinkTypeLink, link.Type)

	bad := &Link{URL: "https://example.com", Type: "banner"}
	assert.ErrorIs(t, bad.BeforeCreate(nil), ErrInvalidLinkType)
}
