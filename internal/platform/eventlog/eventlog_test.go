package eventlog

import (
	"testing"
	"time"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/platform/event"
)

func TestComputeIntegritySHA256_Deterministic(t *testing.T) {
	record := Record{
		OccurredAt: time.Unix(1700000000, 0).UTC(),
		Kind:       "asset.stored",
		SubjectID:  "asset-1",
	}
	payloadJSON := []byte(`{"asset_id":"asset-1"}`)

	a, err := ComputeIntegritySHA256(record, payloadJSON)
	if err != nil {
		t.Fatalf("ComputeIntegritySHA256() err=%v", err)
	}
	b, err := ComputeIntegritySHA256(record, payloadJSON)
	if err != nil {
		t.Fatalf("ComputeIntegritySHA256() err=%v", err)
	}
	if a != b {
		t.Fatalf("integrity mismatch: %q vs %q", a, b)
	}
}

func TestComputeIntegritySHA256_ChangesOnPayload(t *testing.T) {
	record := Record{
		OccurredAt: time.Unix(1700000000, 0).UTC(),
		Kind:       "asset.stored",
		SubjectID:  "asset-1",
	}

	a, err := ComputeIntegritySHA256(record, []byte(`{"v":1}`))
	if err != nil {
		t.Fatalf("ComputeIntegritySHA256() err=%v", err)
	}
	b, err := ComputeIntegritySHA256(record, []byte(`{"v":2}`))
	if err != nil {
		t.Fatalf("ComputeIntegritySHA256() err=%v", err)
	}
	if a == b {
		t.Fatalf("expected integrity to differ")
	}
}

func TestRecordFromEvent(t *testing.T) {
	at := time.Unix(1700000000, 0).UTC()
	e := event.AssetStored{At: at, Asset: domain.Asset{ID: "asset-1", Name: "spark"}}

	record := RecordFromEvent(e)
	if record.Kind != "asset.stored" || record.SubjectID != "asset-1" {
		t.Fatalf("record=%+v", record)
	}
	if !record.OccurredAt.Equal(at) {
		t.Fatalf("occurred at=%v, want %v", record.OccurredAt, at)
	}
	if err := record.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestRecordValidate(t *testing.T) {
	valid := Record{OccurredAt: time.Unix(1700000000, 0).UTC(), Kind: "asset.stored", SubjectID: "asset-1"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
	for name, record := range map[string]Record{
		"zero time":  {Kind: "asset.stored", SubjectID: "asset-1"},
		"no kind":    {OccurredAt: valid.OccurredAt, SubjectID: "asset-1"},
		"no subject": {OccurredAt: valid.OccurredAt, Kind: "asset.stored"},
	} {
		if err := record.Validate(); err == nil {
			t.Fatalf("%s accepted", name)
		}
	}
}
