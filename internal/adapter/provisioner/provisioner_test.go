package provisioner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeZoneName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com.", "example.com"},
		{"example.com", "example.com"},
		{"sub.example.com.", "sub.example.com"},
		{".", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeZoneName(tt.in); got != tt.want {
			t.Errorf("NormalizeZoneName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMockUpsertDNSRecord_Idempotent(t *testing.T) {
	mock := NewMockProvisioner()
	ctx := context.Background()

	record := DNSRecord{
		HostedZoneID: "Z-TEST",
		Name:         "app.example.com",
		Type:         "CNAME",
		Value:        "bucket-a.s3.amazonaws.com",
		TTL:          300,
	}
	require.NoError(t, mock.UpsertDNSRecord(ctx, record))

	// 同名记录再次UPSERT覆盖而不是追加
	record.Value = "bucket-b.s3.amazonaws.com"
	require.NoError(t, mock.UpsertDNSRecord(ctx, record))

	records := mock.UpsertedRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "bucket-b.s3.amazonaws.com", records[0].Value)
	assert.Equal(t, 2, mock.UpsertDNSCalled())
}

func TestMockHostedZone_TrailingDotLookup(t *testing.T) {
	mock := NewMockProvisioner()
	ctx := context.Background()

	zone, err := mock.CreateHostedZone(ctx, "example.com.")
	require.NoError(t, err)
	assert.Equal(t, "example.com", zone.Name)

	// 带尾点与不带尾点都能命中同一个Zone
	found, err := mock.GetHostedZone(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, zone.ID, found.ID)

	found, err = mock.GetHostedZone(ctx, "example.com.")
	require.NoError(t, err)
	assert.Equal(t, zone.ID, found.ID)
}
