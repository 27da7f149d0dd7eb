package render

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Roll card colors
const (
	ColorFresh   = 0x0099ff // Blue
	ColorPushed  = 0xffaa00 // Orange
	ColorSuccess = 0x00ff00 // Green
	ColorFailure = 0x7289da // Discord Blurple
)

// EmbedBuilder provides a fluent API for building Discord embeds
type EmbedBuilder struct {
	embed *discordgo.MessageEmbed
}

// NewEmbed creates a new embed builder
func NewEmbed() *EmbedBuilder {
	return &EmbedBuilder{
		embed: &discordgo.MessageEmbed{
			Type:   discordgo.EmbedTypeRich,
			Fields: make([]*discordgo.MessageEmbedField, 0),
		},
	}
}

// Title sets the embed title
func (b *EmbedBuilder) Title(title string) *EmbedBuilder {
	b.embed.Title = title
	return b
}

// Description sets the embed description
func (b *EmbedBuilder) Description(description string) *EmbedBuilder {
	b.embed.Description = description
	return b
}

// Color sets the embed color
func (b *EmbedBuilder) Color(color int) *EmbedBuilder {
	b.embed.Color = color
	return b
}

// Timestamp sets the embed timestamp; zero times are left out
func (b *EmbedBuilder) Timestamp(timestamp time.Time) *EmbedBuilder {
	if !timestamp.IsZero() {
		b.embed.Timestamp = timestamp.Format(time.RFC3339)
	}
	return b
}

// Footer sets the embed footer
func (b *EmbedBuilder) Footer(text string) *EmbedBuilder {
	b.embed.Footer = &discordgo.MessageEmbedFooter{Text: text}
	return b
}

// Author sets the embed author line
func (b *EmbedBuilder) Author(name string) *EmbedBuilder {
	b.embed.Author = &discordgo.MessageEmbedAuthor{Name: name}
	return b
}

// Field adds a field to the embed. Empty values are skipped since Discord
// rejects them.
func (b *EmbedBuilder) Field(name, value string, inline bool) *EmbedBuilder {
	if value == "" {
		return b
	}
	b.embed.Fields = append(b.embed.Fields, &discordgo.MessageEmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	})
	return b
}

// Build returns the constructed embed
func (b *EmbedBuilder) Build() *discordgo.MessageEmbed {
	return b.embed
}
