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
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wokar/lgnetcast/internal"
	"github.com/wokar/lgnetcast/internal/logger"
)

// Client speaks the NetCast XML protocol to a single LG TV. It is not
// safe for concurrent use; callers drive one request at a time.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	pairingKey string
	protocol   Protocol
	session    string
	debug      bool
	logger     zerolog.Logger
}

// NewClient creates a client for the TV at host. The host may carry an
// explicit port, otherwise the fixed NetCast port is used. An empty
// protocol defaults to ROAP. The pairing key may be empty; Open then
// asks the TV to display it instead of establishing a session.
func NewClient(host string, pairingKey string, protocol Protocol, options *internal.FnModeOptions) *Client {
	if options == nil {
		options = internal.NewModeOptions()
	}
	if protocol == "" {
		protocol = ProtocolROAP
	}
	if !strings.Contains(host, ":") {
		host = net.JoinHostPort(host, DefaultPort)
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = internal.DefaultTimeout
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    fmt.Sprintf("http://%s/%s/api/", host, protocol),
		host:       host,
		pairingKey: pairingKey,
		protocol:   protocol,
		debug:      options.Debug,
		logger:     logger.Component("netcast"),
	}

	if options.Debug {
		logger.SetLevel(logger.LOG_DEBUG)
	}

	return client
}

// Open establishes a session with the TV. With a pairing key configured
// it performs the pairing handshake and stores the returned session id.
// Without one it asks the TV to display its key on screen and returns
// with the client still unpaired.
func (c *Client) Open() error {
	if c.pairingKey == "" {
		return c.DisplayPairingKey()
	}

	body := fmt.Sprintf(authPairBody, xmlEscape(c.pairingKey))
	resp, err := c.post(endpointAuth, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectionError{URL: c.requestURL(endpointAuth), Err: err}
	}

	// Check response status
	if resp.StatusCode != http.StatusOK {
		if c.debug {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Msg("Pairing rejected")
		}
		return &AuthError{Status: resp.StatusCode}
	}

	session, err := parseSession(data)
	if err != nil {
		return err
	}
	c.session = session

	if c.debug {
		c.logger.Debug().
			Str("session", session).
			Msg("Session established")
	}

	return nil
}

// DisplayPairingKey asks the TV to show its pairing key on screen. No
// session is required or established.
func (c *Client) DisplayPairingKey() error {
	resp, err := c.post(endpointAuth, authKeyRequestBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ProtocolError{Status: resp.StatusCode, Reason: "TV refused to display the pairing key"}
	}

	if c.debug {
		c.logger.Debug().Msg("TV asked to display pairing key")
	}

	return nil
}

// SendCommand sends a single remote control key press.
func (c *Client) SendCommand(command Command) error {
	return c.SendHandler(HandleKeyInput, fmt.Sprintf("<value>%d</value>", command))
}

// ChangeChannel tunes the TV to the given channel.
func (c *Client) ChangeChannel(channel Channel) error {
	return c.SendHandler(HandleChannelChange, channel.commandPayload())
}

// SendHandler issues a raw command envelope for the given handler. Most
// callers want SendCommand or ChangeChannel; the touch handlers are only
// reachable through this entry point.
func (c *Client) SendHandler(handler Handler, payload string) error {
	if c.session == "" {
		return ErrNoSession
	}

	body := fmt.Sprintf(commandBody, xmlEscape(c.session), handler, payload)
	resp, err := c.post(endpointCommand, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Check response status
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		if c.debug {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("handler", string(handler)).
				Str("body", string(data)).
				Msg("Command rejected")
		}
		return &ProtocolError{Status: resp.StatusCode, Reason: fmt.Sprintf("%s rejected", handler)}
	}

	if c.debug {
		c.logger.Debug().
			Str("handler", string(handler)).
			Msg("Command accepted")
	}

	return nil
}

// QueryData asks the TV for a status document and returns the data
// elements it contains. The result may be empty when the TV has nothing
// to report for the target.
func (c *Client) QueryData(query Query) ([]DataElement, error) {
	if c.session == "" {
		return nil, ErrNoSession
	}

	values := url.Values{"target": []string{string(query)}}
	resp, err := c.get(endpointData, values)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{URL: c.requestURL(endpointData), Err: err}
	}

	// Check response status
	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{Status: resp.StatusCode, Reason: fmt.Sprintf("query %s rejected", query)}
	}

	elements, err := parseDataElements(data)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug().
			Str("target", string(query)).
			Int("elements", len(elements)).
			Msg("Query completed")
	}

	return elements, nil
}

// Close drops the session and releases any kept-alive connections to the
// TV. It is safe to call multiple times, and the client can be paired
// again with Open afterwards.
func (c *Client) Close() error {
	c.session = ""
	c.httpClient.CloseIdleConnections()
	return nil
}

// Paired reports whether the client holds an established session.
func (c *Client) Paired() bool {
	return c.session != ""
}

// SessionID returns the TV-assigned session identifier, empty until Open
// succeeds.
func (c *Client) SessionID() string {
	return c.session
}

// Host returns the host:port the client talks to.
func (c *Client) Host() string {
	return c.host
}

// requestURL resolves an endpoint to a full URL. HDCP firmware serves
// auth and data through dtv_wifirc instead of dedicated endpoints.
func (c *Client) requestURL(endpoint string) string {
	if c.protocol == ProtocolHDCP && endpoint != endpointCommand {
		endpoint = endpointHDCP
	}
	return c.baseURL + endpoint
}

func (c *Client) post(endpoint string, body string) (*http.Response, error) {
	reqURL := c.requestURL(endpoint)

	// Create request
	req, err := http.NewRequest("POST", reqURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	if c.debug {
		c.logger.Debug().
			Str("url", reqURL).
			Str("body", maskPairingKey(body, c.pairingKey)).
			Msg("Sending request")
	}

	// Send request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{URL: reqURL, Err: err}
	}

	return resp, nil
}

func (c *Client) get(endpoint string, values url.Values) (*http.Response, error) {
	reqURL := c.requestURL(endpoint) + "?" + values.Encode()

	// Create request
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	if c.debug {
		c.logger.Debug().
			Str("url", reqURL).
			Msg("Sending request")
	}

	// Send request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{URL: reqURL, Err: err}
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", contentTypeXML)
	if c.session != "" {
		req.Header.Set(SessionHeader, c.session)
	}
}

// parseSession extracts the session id from a pairing response.
func parseSession(body []byte) (string, error) {
	var envelope struct {
		XMLName xml.Name `xml:"envelope"`
		Session string   `xml:"session"`
	}
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return "", classifyXMLError(err)
	}
	if envelope.Session == "" {
		return "", &ProtocolError{Reason: "pairing response carries no session id"}
	}
	return envelope.Session, nil
}

// parseDataElements collects every <data> element below the response
// root, at any depth. Firmware differs on whether data sits directly
// under the envelope or inside a dataList wrapper.
func parseDataElements(body []byte) ([]DataElement, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var elements []DataElement
	rootSeen := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, classifyXMLError(err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		if !rootSeen {
			if start.Name.Local != rootElement {
				return nil, &ProtocolError{Reason: fmt.Sprintf("unexpected root element <%s>", start.Name.Local)}
			}
			rootSeen = true
			continue
		}

		if start.Name.Local == dataTag {
			var element DataElement
			if err := decoder.DecodeElement(&element, &start); err != nil {
				return nil, classifyXMLError(err)
			}
			elements = append(elements, element)
		}
	}

	if !rootSeen {
		return nil, &ParseError{Err: io.ErrUnexpectedEOF}
	}

	return elements, nil
}

// classifyXMLError separates not-XML-at-all from XML that does not match
// the protocol shape.
func classifyXMLError(err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ParseError{Err: err}
	}
	return &ProtocolError{Reason: err.Error()}
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// maskPairingKey keeps the pairing key out of debug output.
func maskPairingKey(body string, key string) string {
	if key == "" {
		return body
	}
	return strings.ReplaceAll(body, xmlEscape(key), "****")
}
