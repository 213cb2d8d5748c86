package result

import (
	"bytes"
	"encoding/json"
	"fmt"

	"leafscan/internal/apperr"
)

// Normalize decodes a backend payload. A non-empty "error" field yields an
// application failure carrying that message; nothing else is decoded then.
func Normalize(raw []byte) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Result{}, apperr.NewValidation("invalid analysis payload", err)
	}
	if fields == nil {
		return Result{}, apperr.NewValidation("invalid analysis payload", fmt.Errorf("payload is null"))
	}

	if msg := errorMessage(fields["error"]); msg != "" {
		return Result{}, apperr.NewApplication(msg)
	}

	var res Result
	var err error

	deficiency, err := optionalString(fields["deficiency"], "deficiency")
	if err != nil {
		return Result{}, err
	}
	diagnosis, err := optionalString(fields["diagnosis"], "diagnosis")
	if err != nil {
		return Result{}, err
	}
	res.Diagnosis = deficiency
	if res.Diagnosis == "" {
		res.Diagnosis = diagnosis
	}

	if raw, ok := present(fields["confidence"]); ok {
		if err := json.Unmarshal(raw, &res.Confidence); err != nil {
			return Result{}, apperr.NewValidation("invalid confidence", err)
		}
		res.ConfidenceSet = true
	}

	if res.Recommendations, err = recommendations(fields); err != nil {
		return Result{}, err
	}

	if raw, ok := present(fields["color_data"]); ok {
		if err := decodeColorData(raw, &res); err != nil {
			return Result{}, err
		}
	}

	if raw, ok := present(fields["plots"]); ok {
		if res.Plots, err = decodePlots(raw); err != nil {
			return Result{}, err
		}
	}

	if raw, ok := present(fields["image_info"]); ok {
		var info ImageInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return Result{}, apperr.NewValidation("invalid image_info", err)
		}
		res.ImageInfo = &info
	}

	return res, nil
}

// present treats a missing key and an explicit null the same way.
func present(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}
	return trimmed, true
}

// errorMessage reads the error field. Falsy values (false, 0, "") mean no error.
func errorMessage(raw json.RawMessage) string {
	raw, ok := present(raw)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if bytes.Equal(raw, []byte("false")) {
		return ""
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n == 0 {
		return ""
	}
	return string(raw)
}

func optionalString(raw json.RawMessage, name string) (string, error) {
	raw, ok := present(raw)
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", apperr.NewValidation("invalid "+name, err)
	}
	return s, nil
}

func recommendations(fields map[string]json.RawMessage) ([]string, error) {
	if raw, ok := present(fields["recommendations"]); ok {
		return stringList(raw, "recommendations")
	}
	raw, ok := present(fields["recommendation"])
	if !ok {
		return nil, nil
	}
	if raw[0] == '[' {
		return stringList(raw, "recommendation")
	}
	s, err := optionalString(raw, "recommendation")
	if err != nil || s == "" {
		return nil, err
	}
	return []string{s}, nil
}

func stringList(raw json.RawMessage, name string) ([]string, error) {
	if raw[0] != '[' {
		s, err := optionalString(raw, name)
		if err != nil || s == "" {
			return nil, err
		}
		return []string{s}, nil
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperr.NewValidation("invalid "+name, err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out, nil
}

func decodeColorData(raw json.RawMessage, res *Result) error {
	if raw[0] != '{' {
		return apperr.NewValidation("invalid color_data", fmt.Errorf("expected object"))
	}
	res.HasColorData = true

	var parts map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return apperr.NewValidation("invalid color_data", err)
	}

	var err error
	if res.Colors, err = colorShares(parts["percentages"], "color_data.percentages"); err != nil {
		return err
	}
	if res.Counts, err = colorShares(parts["counts"], "color_data.counts"); err != nil {
		return err
	}
	if res.Proportions, err = colorShares(parts["proportions"], "color_data.proportions"); err != nil {
		return err
	}
	return nil
}

func colorShares(raw json.RawMessage, name string) ([]ColorShare, error) {
	raw, ok := present(raw)
	if !ok {
		return nil, nil
	}
	var shares []ColorShare
	err := eachMember(raw, func(key string, value json.RawMessage) error {
		var v float64
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		shares = upsertShare(shares, ColorShare{Name: key, Value: v})
		return nil
	})
	if err != nil {
		return nil, apperr.NewValidation("invalid "+name, err)
	}
	return shares, nil
}

func upsertShare(shares []ColorShare, share ColorShare) []ColorShare {
	for i := range shares {
		if shares[i].Name == share.Name {
			shares[i].Value = share.Value
			return shares
		}
	}
	return append(shares, share)
}

func decodePlots(raw json.RawMessage) ([]Plot, error) {
	switch raw[0] {
	case '[':
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, apperr.NewValidation("invalid plots", err)
		}
		plots := make([]Plot, 0, len(items))
		for _, data := range items {
			plots = append(plots, Plot{Data: data})
		}
		return plots, nil
	case '{':
		var plots []Plot
		index := map[string]int{}
		err := eachMember(raw, func(key string, value json.RawMessage) error {
			var data string
			if err := json.Unmarshal(value, &data); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if i, ok := index[key]; ok {
				plots[i].Data = data
				return nil
			}
			index[key] = len(plots)
			plots = append(plots, Plot{Caption: Caption(key), Labeled: true, Data: data})
			return nil
		})
		if err != nil {
			return nil, apperr.NewValidation("invalid plots", err)
		}
		return plots, nil
	default:
		return nil, apperr.NewValidation("invalid plots", fmt.Errorf("expected array or object"))
	}
}

// eachMember walks a JSON object in document order.
func eachMember(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
