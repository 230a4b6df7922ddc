package response

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	MessageVerified = "Payment verified"
	MessageFailed   = "Payment failed"
)

// Verification is the normalized outcome of verifying one payment reference.
// Raw carries the provider's transaction data untouched. On the wire the provider
// fields sit at the top level with status replaced by the normalized one.
type Verification struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Raw       json.RawMessage `json:"-"`
}

func (v Verification) Succeeded() bool {
	return v.Status == StatusSuccess
}

// Pays reports whether the verified transaction covers amount minor units in currency.
func (v Verification) Pays(amount int64, currency string) bool {
	return v.Amount == amount && v.Currency == currency
}

func (v Verification) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(v.Raw) > 0 {
		// a non-object payload is dropped rather than nested
		if err := json.Unmarshal(v.Raw, &fields); err != nil || fields == nil {
			fields = map[string]json.RawMessage{}
		}
	}

	set := func(key string, value interface{}) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fields[key] = encoded
		return nil
	}
	if err := set("status", v.Status); err != nil {
		return nil, err
	}
	if _, ok := fields["reference"]; !ok || v.Reference != "" {
		if err := set("reference", v.Reference); err != nil {
			return nil, err
		}
	}
	if _, ok := fields["amount"]; !ok {
		if err := set("amount", v.Amount); err != nil {
			return nil, err
		}
	}
	if _, ok := fields["currency"]; !ok {
		if err := set("currency", v.Currency); err != nil {
			return nil, err
		}
	}
	return json.Marshal(fields)
}

func (v *Verification) UnmarshalJSON(b []byte) error {
	type fields Verification
	decoded := fields{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		return err
	}
	*v = Verification(decoded)
	v.Raw = append(json.RawMessage(nil), b...)
	return nil
}
