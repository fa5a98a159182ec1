package chatbot

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/menutool"

	"github.com/dustin/go-humanize"
)

const (
	menuHeader      = "Berikut adalah menu yang tersedia sesuai dengan permintaan Anda:\n\n"
	menuLookupError = "Maaf, terjadi kesalahan saat mengambil data menu: "
	menuNotFound    = "Maaf, tidak ada menu yang sesuai dengan kriteria yang Anda cari. Silakan coba dengan kata kunci lain."
	menuEmpty       = "Maaf, tidak ada menu yang tersedia saat ini."
)

// FormatMenuResponse renders a lookup envelope as the keyword-path answer.
func FormatMenuResponse(env menutool.Envelope) string {
	switch env.Status {
	case menutool.StatusError:
		return menuLookupError + env.Message
	case menutool.StatusNotFound:
		return menuNotFound
	}
	if len(env.Data) == 0 {
		return menuEmpty
	}

	var sb strings.Builder
	sb.WriteString(menuHeader)
	for _, item := range env.Data {
		fmt.Fprintf(&sb, "**%s**\n", fieldText(item, "name", "Nama tidak tersedia"))
		fmt.Fprintf(&sb, "- Kategori: %s\n", fieldText(item, "category", "Kategori tidak tersedia"))
		fmt.Fprintf(&sb, "- Harga: Rp %s\n", FormatPrice(fieldValue(item, "price")))
		fmt.Fprintf(&sb, "- Deskripsi: %s\n\n", fieldText(item, "description", "Deskripsi tidak tersedia"))
	}
	return sb.String()
}

// FormatPrice renders a price as whole rupiah with '.' thousands separators.
// Unparseable values render as 0.
func FormatPrice(v interface{}) string {
	f, ok := toFloat(v)
	if !ok {
		f = 0
	}
	return humanize.FormatInteger("#.###,", int(math.Round(f)))
}

func fieldValue(row database.Row, name string) interface{} {
	v, _ := row.Get(name)
	return v
}

func fieldText(row database.Row, name, fallback string) string {
	switch v := fieldValue(row, name).(type) {
	case nil:
		return fallback
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
