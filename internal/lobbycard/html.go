package lobbycard

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/card.html
var templateFS embed.FS

var cardTemplates = template.Must(template.New("lobbycard").ParseFS(templateFS, "templates/card.html"))

// WriteHTML writes the markup for a list of card views.
func WriteHTML(w io.Writer, views []View) error {
	return cardTemplates.ExecuteTemplate(w, "cards", views)
}

// WriteCardHTML writes the markup for a single card.
func WriteCardHTML(w io.Writer, v View) error {
	return cardTemplates.ExecuteTemplate(w, "card", v)
}
