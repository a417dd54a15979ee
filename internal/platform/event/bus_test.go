package event

import (
	"testing"
	"time"

	"github.com/atelier-labs/atelier-go/internal/domain"
)

func TestBus_PublishDeliversInOrder(t *testing.T) {
	bus := NewBus()
	var seen []Kind
	bus.Subscribe(ObserverFunc(func(e Event) {
		seen = append(seen, e.Kind())
	}))

	at := time.Unix(1700000000, 0).UTC()
	bus.Publish(AssetStored{At: at, Asset: domain.Asset{ID: "a1"}})
	bus.Publish(SessionStarted{At: at, Session: domain.CreativeSession{ID: "s1"}})

	if len(seen) != 2 {
		t.Fatalf("seen=%d events, want 2", len(seen))
	}
	if seen[0] != KindAssetStored || seen[1] != KindSessionStarted {
		t.Fatalf("seen=%v, want [%s %s]", seen, KindAssetStored, KindSessionStarted)
	}
}

func TestBus_NilSafe(t *testing.T) {
	var bus *Bus
	bus.Subscribe(ObserverFunc(func(Event) { t.Fatalf("must not deliver") }))
	bus.Publish(AssetDeleted{At: time.Now(), AssetID: "a1"})
}

func TestBus_MultipleObservers(t *testing.T) {
	bus := NewBus()
	first, second := 0, 0
	bus.Subscribe(ObserverFunc(func(Event) { first++ }))
	bus.Subscribe(ObserverFunc(func(Event) { second++ }))
	bus.Publish(AssetDeleted{At: time.Unix(1700000000, 0).UTC(), AssetID: "a1"})
	if first != 1 || second != 1 {
		t.Fatalf("first=%d second=%d, want 1 1", first, second)
	}
}
