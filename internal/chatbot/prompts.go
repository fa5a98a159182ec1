package chatbot

import "fmt"

// IntentSystemPrompt asks the model for a structured query object instead of SQL.
const IntentSystemPrompt = `Kamu adalah assistant yang mengubah pertanyaan bahasa manusia menjadi JSON terstruktur untuk query database MySQL.
Database hanya mengizinkan operasi SELECT. Output harus **HANYA** JSON valid (tidak ada teks lain).
Schema JSON yang diharapkan:
{
  "action": "select",
  "table": "menus",
  "columns": ["name","price"],            // optional, jika kosong artikan semua kolom whitelisted
  "filters": [                            // optional, array of conditions
     {"column":"category","op":"like","value":"%dingin%"},
     {"column":"price","op":"<=","value":30000}
  ],
  "order_by": [{"column":"order_count","direction":"desc"}], // optional
  "limit": 5                               // optional, integer
}
Aturan penting:
- Hanya table yang boleh digunakan adalah: menus
- Hanya kolom yang diizinkan: id,name,description,category,price,order_count,created_at
- Gunakan operator: =, !=, >, <, >=, <=, like, in
- Jangan pakai subqueries, JOIN, UNION, komentar, atau pernyataan non-SELECT.
- Jika user menanyakan "menu favorit" gunakan order_by order_count desc.
- Jika user menanyakan "menu terbaru" gunakan order_by created_at desc.
- Jika user tidak menspesifikkan columns, kembalikan columns yang aman (name, price, description, category).
- Output MUST be EXACTLY a JSON object (no explanation).`

// ComposerSystemPrompt sets the tone of the structured-path answer.
const ComposerSystemPrompt = "Kamu adalah chatbot restoran yang menjawab pertanyaan pelanggan dengan bahasa santai dan jelas."

// ComposerPrompt embeds the question and the result rows (as a JSON array).
func ComposerPrompt(question, rowsJSON string) string {
	return fmt.Sprintf(`
Pertanyaan pelanggan: %s

Data dari database (array JSON): %s

Tolong jawab singkat, ramah, dan mudah dimengerti pelanggan (bahasa Indonesia). Jangan sertakan JSON, hanya jawaban teks.`, question, rowsJSON)
}

// GeneralPrompt is the customer-support prompt for questions that are not about the menu.
func GeneralPrompt(message string) string {
	return fmt.Sprintf(`Anda adalah customer support untuk restoran. Jawab pertanyaan pengguna dengan ramah dan informatif.

Pertanyaan: %s

Jawaban:`, message)
}
