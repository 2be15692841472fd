package email

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// content mirrors the structured send API's JSON payload shape.
type v2Content struct {
	Data    string `json:"Data"`
	Charset string `json:"Charset,omitempty"`
}

type v2Body struct {
	Text *v2Content `json:"Text,omitempty"`
	Html *v2Content `json:"Html,omitempty"`
}

type v2Simple struct {
	Subject v2Content `json:"Subject"`
	Body    v2Body    `json:"Body"`
}

type v2Destination struct {
	ToAddresses []string `json:"ToAddresses"`
	CcAddresses []string `json:"CcAddresses,omitempty"`
}

type v2Tag struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type v2Payload struct {
	FromEmailAddress string        `json:"FromEmailAddress"`
	Destination      v2Destination `json:"Destination"`
	ReplyToAddresses []string      `json:"ReplyToAddresses,omitempty"`
	Content          struct {
		Simple v2Simple `json:"Simple"`
	} `json:"Content"`
	EmailTags []v2Tag `json:"EmailTags,omitempty"`
}

// Payload serializes the message into the structured JSON body accepted
// by the v2 send endpoint. Subject and bodies are declared as UTF-8.
func (m Message) Payload() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	p := v2Payload{
		FromEmailAddress: m.From,
		Destination: v2Destination{
			ToAddresses: m.To,
			CcAddresses: m.CC,
		},
	}
	if m.ReplyTo != "" {
		p.ReplyToAddresses = []string{m.ReplyTo}
	}
	p.Content.Simple.Subject = v2Content{Data: m.Subject, Charset: "UTF-8"}
	if m.TextBody != "" {
		p.Content.Simple.Body.Text = &v2Content{Data: m.TextBody, Charset: "UTF-8"}
	}
	if m.HTMLBody != "" {
		p.Content.Simple.Body.Html = &v2Content{Data: m.HTMLBody, Charset: "UTF-8"}
	}
	for _, name := range sortedKeys(m.Tags) {
		p.EmailTags = append(p.EmailTags, v2Tag{Name: name, Value: m.Tags[name]})
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	return data, nil
}

// QueryValues serializes the message into the legacy query-protocol form
// (Action=SendEmail&Version=...). Repeated members use the 1-based
// member index naming the legacy API requires.
func (m Message) QueryValues() (url.Values, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("Action", "SendEmail")
	v.Set("Version", "2010-12-01")
	v.Set("Source", m.From)
	for i, to := range m.To {
		v.Set("Destination.ToAddresses.member."+strconv.Itoa(i+1), to)
	}
	for i, cc := range m.CC {
		v.Set("Destination.CcAddresses.member."+strconv.Itoa(i+1), cc)
	}
	if m.ReplyTo != "" {
		v.Set("ReplyToAddresses.member.1", m.ReplyTo)
	}
	v.Set("Message.Subject.Data", m.Subject)
	v.Set("Message.Subject.Charset", "UTF-8")
	if m.TextBody != "" {
		v.Set("Message.Body.Text.Data", m.TextBody)
		v.Set("Message.Body.Text.Charset", "UTF-8")
	}
	if m.HTMLBody != "" {
		v.Set("Message.Body.Html.Data", m.HTMLBody)
		v.Set("Message.Body.Html.Charset", "UTF-8")
	}
	for i, name := range sortedKeys(m.Tags) {
		prefix := "Tags.member." + strconv.Itoa(i+1)
		v.Set(prefix+".Name", name)
		v.Set(prefix+".Value", m.Tags[name])
	}
	return v, nil
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
