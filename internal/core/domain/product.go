package domain

import "encoding/json"

var productKeys = []string{"id", "title", "price", "image"}

// Product holds the display attributes the catalog returns for an item.
// Only ID and Price are interpreted by the cart; any other catalog field is
// kept in Attributes and written back unchanged.
type Product struct {
	ID    int64   `json:"id"`
	Title string  `json:"title,omitempty"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`

	Attributes map[string]json.RawMessage `json:"-"`
}

// productFields drops Product's JSON methods so the typed fields can be
// encoded with the default rules.
type productFields Product

func (p Product) MarshalJSON() ([]byte, error) {
	return marshalFlat(productFields(p), p.Attributes)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var f productFields
	extra, err := unmarshalFlat(data, &f, productKeys...)
	if err != nil {
		return err
	}
	*p = Product(f)
	p.Attributes = extra
	return nil
}

// marshalFlat encodes typed as a JSON object and merges extra beneath it.
// Typed fields win on key collisions.
func marshalFlat(typed interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(typed)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(extra)+len(fields))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// unmarshalFlat decodes data into typed and returns every key not listed in
// known, or nil when there are none.
func unmarshalFlat(data []byte, typed interface{}, known ...string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, typed); err != nil {
		return nil, err
	}

	var extra map[string]json.RawMessage
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(extra, k)
	}
	if len(extra) == 0 {
		return nil, nil
	}
	return extra, nil
}
