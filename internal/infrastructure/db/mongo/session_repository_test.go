package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestSetUpdate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := setUpdate(map[string]string{"agrocean_token": "tok", "agrocean_user": "{}"}, now)

	set, ok := got["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected $set document, got %#v", got)
	}
	if set["values.agrocean_token"] != "tok" || set["values.agrocean_user"] != "{}" {
		t.Fatalf("unexpected $set: %#v", set)
	}
	if set["updated_at"] != now {
		t.Fatalf("expected updated_at stamp")
	}
}

func TestUnsetUpdate(t *testing.T) {
	now := time.Now().UTC()
	got := unsetUpdate([]string{"agrocean_token", "agrocean_user"}, now)

	unset, ok := got["$unset"].(bson.M)
	if !ok || len(unset) != 2 {
		t.Fatalf("unexpected $unset: %#v", got)
	}
	if _, ok := unset["values.agrocean_user"]; !ok {
		t.Fatalf("missing user key in $unset")
	}
	if _, ok := got["$set"].(bson.M)["updated_at"]; !ok {
		t.Fatalf("expected updated_at stamp")
	}
}
