package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/approval"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/config"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2024, 5, 2, 23, 30, 0, 0, time.FixedZone("PDT", -7*3600))
	key := objectKey(approval.Event{Entity: approval.EntityVendor, At: at}, "2abc")
	assert.Equal(t, "approvals/vendor/2024/05/03/2abc.json", key)
}

func TestNewAuditArchiveParsesEndpointScheme(t *testing.T) {
	a, err := NewAuditArchive(config.StorageConfig{
		Endpoint:    "https://minio.internal:9000",
		BucketAudit: "audit",
		Region:      "us-east-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "minio.internal:9000", a.client.EndpointURL().Host)
	assert.Equal(t, "https", a.client.EndpointURL().Scheme)
}
