package objectstore

import "testing"

func TestConfigValidate(t *testing.T) {
	cfg := Config{
		Endpoint:       "localhost:9000",
		AccessKey:      "atelier",
		SecretKey:      "atelierminio",
		Region:         "us-east-1",
		BucketPayloads: "payloads",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	bad := cfg
	bad.Endpoint = "http://localhost:9000"
	if err := bad.Validate(); err == nil {
		t.Fatalf("endpoint with scheme accepted")
	}

	bad = cfg
	bad.BucketPayloads = ""
	if err := bad.Validate(); err == nil {
		t.Fatalf("empty bucket accepted")
	}
}

func TestPayloadKey(t *testing.T) {
	if got := PayloadKey(" asset-1 "); got != "assets/asset-1/payload" {
		t.Fatalf("PayloadKey()=%q", got)
	}
}
