package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpiLink(t *testing.T) {
	link := BuildUpiLink("canteen@upi", "Main Canteen", 60, "Order AB12CD34")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "upi", u.Scheme)

	q := u.Query()
	assert.Equal(t, "canteen@upi", q.Get("pa"))
	assert.Equal(t, "Main Canteen", q.Get("pn"))
	assert.Equal(t, "60.00", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Equal(t, "Order AB12CD34", q.Get("tn"))
}

func TestBuildUpiLinkOmitsEmptyNote(t *testing.T) {
	link := BuildUpiLink("canteen@upi", "Main Canteen", 20.5, "")

	u, err := url.Parse(link)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "20.50", q.Get("am"))
	assert.False(t, q.Has("tn"))
}

func TestGenerateQRCodeProducesPNG(t *testing.T) {
	data, err := GenerateQRCode("upi://pay?pa=canteen@upi", 256)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}
