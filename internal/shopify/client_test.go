package shopify

import (
	"testing"

	goshopify "github.com/bold-commerce/go-shopify/v3"
)

func TestFindMetafield(t *testing.T) {
	fields := []Metafield{
		{Namespace: "spedirepro", Key: "tracking", Value: "TRK123"},
		{Namespace: "custom", Key: "doganale", Value: "https://docs.example/d.pdf"},
	}
	if v, ok := FindMetafield(fields, "spedirepro", "tracking"); !ok || v != "TRK123" {
		t.Fatalf("unexpected lookup result: %q %v", v, ok)
	}
	if _, ok := FindMetafield(fields, "spedirepro", "reference"); ok {
		t.Fatalf("unexpected hit for absent key")
	}
}

func TestConvertMetafieldsStringifiesValues(t *testing.T) {
	fields := convertMetafields([]goshopify.Metafield{
		{Namespace: "custom", Key: "hs_code", Value: 61091000},
	})
	if len(fields) != 1 || fields[0].Value != "61091000" {
		t.Fatalf("unexpected conversion: %+v", fields)
	}
}
