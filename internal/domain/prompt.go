package domain

import (
	"bytes"
	"fmt"
	"text/template"
)

// DefaultChatModel is the hosted model the risk narrator asks by default.
const DefaultChatModel = "llama-3.3-70b-versatile"

var promptTemplate = template.Must(template.New("risk").Parse(`
Based on the provided weather data for {{.City.Text}}, here is an analysis of the potential risks associated with the current weather conditions and location:
- Temperature: {{.Temperature.Text}}°C
- Feels Like: {{.FeelsLike.Text}}°C
- Pressure: {{.Pressure.Text}} hPa
- Humidity: {{.Humidity.Text}}%
- Weather: {{.Weather.Text}}
- Wind Speed: {{.WindSpeed.Text}} m/s
- Wind Direction: {{.WindDeg.Text}}°
- Visibility: {{.Visibility.Text}} meters
- Cloud Coverage: {{.Clouds.Text}}%

Analyze the risks for different natural disasters such as storms, floods, wildfires, tornadoes, etc., based on these weather conditions.
`))

// RenderPrompt fills the risk-analysis template with every snapshot field.
func RenderPrompt(snap WeatherSnapshot) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, snap); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// Chat roles used by the narrator.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
