// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package netcast

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Protocol selects the URL scheme generation of the TV firmware speaks.
// Newer NetCast models use ROAP, older ones HDCP.
type Protocol string

// Command represents a remote control key code for LG NetCast TVs
type Command int

// Query represents a status data target for LG NetCast TVs
type Query string

// Handler represents a command handler understood by the TV
type Handler string

// Channel identifies a tuner channel. Major/Minor carry the logical
// channel number, SourceIndex and PhysicalNum the tuner slot behind it.
type Channel struct {
	Type        string `xml:"chtype,omitempty"`
	Major       int    `xml:"major"`
	Minor       int    `xml:"minor"`
	SourceIndex int    `xml:"sourceIndex"`
	PhysicalNum int    `xml:"physicalNum"`
	Name        string `xml:"chname,omitempty"`
}

// commandPayload renders the channel selector as inline children of a
// command envelope, the way HandleChannelChange expects them.
func (ch Channel) commandPayload() string {
	var b strings.Builder
	if ch.Type != "" {
		fmt.Fprintf(&b, "<chtype>%s</chtype>", xmlEscape(ch.Type))
	}
	fmt.Fprintf(&b, "<major>%d</major><minor>%d</minor>", ch.Major, ch.Minor)
	fmt.Fprintf(&b, "<sourceIndex>%d</sourceIndex><physicalNum>%d</physicalNum>", ch.SourceIndex, ch.PhysicalNum)
	if ch.Name != "" {
		fmt.Fprintf(&b, "<chname>%s</chname>", xmlEscape(ch.Name))
	}
	return b.String()
}

func (ch Channel) String() string {
	if ch.Name != "" {
		return fmt.Sprintf("%d.%d %s", ch.Major, ch.Minor, ch.Name)
	}
	return fmt.Sprintf("%d.%d", ch.Major, ch.Minor)
}

// ChannelFromData decodes a channel_list entry into a Channel.
func ChannelFromData(element DataElement) (Channel, error) {
	var channel Channel
	if err := xml.Unmarshal([]byte(element.String()), &channel); err != nil {
		return Channel{}, &ParseError{Err: err}
	}
	return channel, nil
}

// DataElement holds one <data> block from a query response. The inner
// XML is kept verbatim so callers can inspect fields the library does
// not model.
type DataElement struct {
	InnerXML []byte `xml:",innerxml"`
}

// String returns the element as an XML fragment.
func (d DataElement) String() string {
	return "<data>" + string(d.InnerXML) + "</data>"
}

// Field returns the character data of the first child element with the
// given name, searching nested elements in document order.
func (d DataElement) Field(name string) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(d.InnerXML))
	for {
		token, err := decoder.Token()
		if err != nil {
			return "", false
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}
		var value struct {
			Text string `xml:",chardata"`
		}
		if err := decoder.DecodeElement(&value, &start); err != nil {
			return "", false
		}
		return strings.TrimSpace(value.Text), true
	}
}
