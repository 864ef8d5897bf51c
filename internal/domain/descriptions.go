package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Зарезервированные ключи descriptionsObj, из которых строятся быстрые ссылки
const (
	DescriptionKeyWebsiteLink          = "websiteLink"
	DescriptionKeyQRCodeImageURL       = "qrCodeImageUrl"
	DescriptionKeyQRCodeDestinationURL = "qrCodeDestinationUrl"
)

// DescriptionEntry - одна пара ключ/значение
type DescriptionEntry struct {
	Key   string
	Value string
}

// Descriptions - упорядоченный набор произвольных аннотаций точки.
// В JSON представляется объектом, порядок ключей сохраняется.
type Descriptions []DescriptionEntry

// Shortcuts - типизированное представление зарезервированных ключей
type Shortcuts struct {
	WebsiteLink          string `json:"websiteLink,omitempty"`
	QRCodeImageURL       string `json:"qrCodeImageUrl,omitempty"`
	QRCodeDestinationURL string `json:"qrCodeDestinationUrl,omitempty"`
}

// IsEmpty возвращает true, если ни одна ссылка не задана
func (s Shortcuts) IsEmpty() bool {
	return s.WebsiteLink == "" && s.QRCodeImageURL == "" && s.QRCodeDestinationURL == ""
}

func isReservedDescriptionKey(key string) bool {
	switch key {
	case DescriptionKeyWebsiteLink, DescriptionKeyQRCodeImageURL, DescriptionKeyQRCodeDestinationURL:
		return true
	}
	return false
}

// Get возвращает значение по ключу
func (d Descriptions) Get(key string) (string, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set добавляет ключ в конец или заменяет значение существующего ключа на месте
func (d Descriptions) Set(key, value string) Descriptions {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, DescriptionEntry{Key: key, Value: value})
}

// Delete удаляет ключ, сохраняя порядок остальных
func (d Descriptions) Delete(key string) Descriptions {
	out := d[:0]
	for _, e := range d {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

// Shortcuts строит быстрые ссылки из зарезервированных ключей
func (d Descriptions) Shortcuts() Shortcuts {
	var s Shortcuts
	s.WebsiteLink, _ = d.Get(DescriptionKeyWebsiteLink)
	s.QRCodeImageURL, _ = d.Get(DescriptionKeyQRCodeImageURL)
	s.QRCodeDestinationURL, _ = d.Get(DescriptionKeyQRCodeDestinationURL)
	return s
}

// Annotations возвращает только пользовательские (не зарезервированные) записи
func (d Descriptions) Annotations() Descriptions {
	out := make(Descriptions, 0, len(d))
	for _, e := range d {
		if !isReservedDescriptionKey(e.Key) {
			out = append(out, e)
		}
	}
	return out
}

// MarshalJSON пишет объект с сохранением порядка ключей
func (d Descriptions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON читает объект, сохраняя порядок ключей.
// null-значения пропускаются, повторный ключ перезаписывает значение на прежней позиции.
func (d *Descriptions) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("descriptions: expected object, got %v", tok)
	}

	out := Descriptions{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("descriptions: invalid key %v", keyTok)
		}

		var value *string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("descriptions: value for %q must be a string: %w", key, err)
		}
		if value == nil {
			continue
		}
		out = out.Set(key, *value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = out
	return nil
}

// Value сохраняет набор в колонку JSON (не JSONB - JSONB не сохраняет порядок ключей)
func (d Descriptions) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan читает набор из колонки JSON
func (d *Descriptions) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Descriptions{}
		return nil
	case []byte:
		return d.UnmarshalJSON(v)
	case string:
		return d.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("descriptions: unsupported scan type %T", src)
	}
}
