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

package netcast_test

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wokar/lgnetcast/internal"
	"github.com/wokar/lgnetcast/internal/netcast"
)

const (
	testPairingKey = "123456"
	testSession    = "a1b2c3d4"
)

// createMockTV creates a test HTTP server standing in for a NetCast TV
func createMockTV(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

// createTestClient creates a ROAP client pointed at a mock TV
func createTestClient(server *httptest.Server, key string) *netcast.Client {
	address := strings.TrimPrefix(server.URL, "http://")
	return netcast.NewClient(address, key, netcast.ProtocolROAP, nil)
}

// writeEnvelope writes a ROAP response envelope with the given inner XML
func writeEnvelope(w http.ResponseWriter, inner string) {
	w.Header().Set("Content-Type", "application/atom+xml")
	fmt.Fprintf(w, `<?xml version="1.0" encoding="utf-8"?><envelope>%s</envelope>`, inner)
}

// withPairing answers auth requests with a fixed session and hands
// everything else to next
func withPairing(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/auth") {
			writeEnvelope(w, "<session>"+testSession+"</session>")
			return
		}
		next(w, r)
	}
}

// pairedTestClient opens a session against the mock TV before returning
func pairedTestClient(t *testing.T, server *httptest.Server) *netcast.Client {
	t.Helper()
	client := createTestClient(server, testPairingKey)
	require.NoError(t, client.Open())
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("appends the fixed NetCast port when none is given", func(t *testing.T) {
		client := netcast.NewClient("192.168.1.50", testPairingKey, netcast.ProtocolROAP, nil)
		assert.Equal(t, "192.168.1.50:8080", client.Host())
	})

	t.Run("keeps an explicit port", func(t *testing.T) {
		client := netcast.NewClient("192.168.1.50:9090", testPairingKey, netcast.ProtocolROAP, nil)
		assert.Equal(t, "192.168.1.50:9090", client.Host())
	})

	t.Run("defaults to ROAP for an empty protocol", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/roap/api/auth", r.URL.Path)
			writeEnvelope(w, "<session>"+testSession+"</session>")
		})
		defer server.Close()

		address := strings.TrimPrefix(server.URL, "http://")
		client := netcast.NewClient(address, testPairingKey, "", nil)
		require.NoError(t, client.Open())
		assert.True(t, client.Paired())
	})
}

func TestClientOpen(t *testing.T) {
	t.Run("pairs and stores the session", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/roap/api/auth", r.URL.Path)
			assert.Equal(t, "application/atom+xml", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<type>AuthReq</type>")
			assert.Contains(t, string(body), "<value>123456</value>")

			writeEnvelope(w, "<session>"+testSession+"</session>")
		})
		defer server.Close()

		client := createTestClient(server, testPairingKey)
		require.NoError(t, client.Open())

		assert.True(t, client.Paired())
		assert.Equal(t, testSession, client.SessionID())
	})

	t.Run("escapes XML metacharacters in the pairing key", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<value>6&lt;&amp;9&#34;</value>")

			writeEnvelope(w, "<session>"+testSession+"</session>")
		})
		defer server.Close()

		client := createTestClient(server, `6<&9"`)
		require.NoError(t, client.Open())
	})

	t.Run("returns AuthError when the TV rejects the key", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		defer server.Close()

		client := createTestClient(server, "000000")
		err := client.Open()

		var authErr *netcast.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.Status)
		assert.False(t, client.Paired())
	})

	t.Run("asks the TV to display its key when none is configured", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<type>AuthKeyReq</type>")
			assert.NotContains(t, string(body), "<value>")

			writeEnvelope(w, "")
		})
		defer server.Close()

		client := createTestClient(server, "")
		require.NoError(t, client.Open())
		assert.False(t, client.Paired())
	})

	t.Run("rejects a pairing response without a session id", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, "")
		})
		defer server.Close()

		client := createTestClient(server, testPairingKey)
		err := client.Open()

		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Contains(t, protoErr.Reason, "no session id")
		assert.False(t, client.Paired())
	})

	t.Run("rejects a pairing response that is not XML", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"session": "nope"}`)
		})
		defer server.Close()

		client := createTestClient(server, testPairingKey)
		err := client.Open()

		var parseErr *netcast.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestDisplayPairingKey(t *testing.T) {
	t.Run("sends an AuthKeyReq", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/roap/api/auth", r.URL.Path)

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<type>AuthKeyReq</type>")

			writeEnvelope(w, "")
		})
		defer server.Close()

		client := createTestClient(server, testPairingKey)
		assert.NoError(t, client.DisplayPairingKey())
	})

	t.Run("returns ProtocolError when the TV refuses", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		defer server.Close()

		client := createTestClient(server, testPairingKey)
		err := client.DisplayPairingKey()

		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, http.StatusInternalServerError, protoErr.Status)
	})
}

func TestSendCommand(t *testing.T) {
	t.Run("sends the key code under the active session", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/roap/api/command", r.URL.Path)
			assert.Equal(t, testSession, r.Header.Get("X-Netcast-Session"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<session>"+testSession+"</session>")
			assert.Contains(t, string(body), "<type>HandleKeyInput</type>")
			assert.Contains(t, string(body), "<value>24</value>")

			writeEnvelope(w, "")
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		assert.NoError(t, client.SendCommand(netcast.VolumeUp))
	})

	t.Run("refuses to send without a session", func(t *testing.T) {
		var requests atomic.Int32
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			writeEnvelope(w, "")
		})
		defer server.Close()

		client := createTestClient(server, testPairingKey)
		err := client.SendCommand(netcast.Power)

		assert.ErrorIs(t, err, netcast.ErrNoSession)
		assert.Equal(t, int32(0), requests.Load(), "no request should reach the TV")
	})

	t.Run("returns ProtocolError when the TV rejects the command", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		err := client.SendCommand(netcast.Power)

		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, http.StatusBadRequest, protoErr.Status)
	})
}

func TestChangeChannel(t *testing.T) {
	t.Run("sends the full channel selector", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<type>HandleChannelChange</type>")
			assert.Contains(t, string(body), "<chtype>terrestrial</chtype>")
			assert.Contains(t, string(body), "<major>7</major>")
			assert.Contains(t, string(body), "<minor>0</minor>")
			assert.Contains(t, string(body), "<sourceIndex>1</sourceIndex>")
			assert.Contains(t, string(body), "<physicalNum>25</physicalNum>")
			assert.Contains(t, string(body), "<chname>ARTE</chname>")

			writeEnvelope(w, "")
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		channel := netcast.Channel{
			Type:        "terrestrial",
			Major:       7,
			SourceIndex: 1,
			PhysicalNum: 25,
			Name:        "ARTE",
		}
		assert.NoError(t, client.ChangeChannel(channel))
	})

	t.Run("requires a session", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should reach the TV")
		})
		defer server.Close()

		client := createTestClient(server, testPairingKey)
		err := client.ChangeChannel(netcast.Channel{Major: 1})
		assert.ErrorIs(t, err, netcast.ErrNoSession)
	})
}

func TestSendHandler(t *testing.T) {
	t.Run("reaches the touch handlers", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<type>HandleTouchClick</type>")
			assert.Contains(t, string(body), "<x>10</x><y>20</y>")

			writeEnvelope(w, "")
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		assert.NoError(t, client.SendHandler(netcast.HandleTouchClick, "<x>10</x><y>20</y>"))
	})
}

func TestQueryData(t *testing.T) {
	t.Run("returns the data elements", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "/roap/api/data", r.URL.Path)
			assert.Equal(t, "volume_info", r.URL.Query().Get("target"))
			assert.Equal(t, testSession, r.Header.Get("X-Netcast-Session"))

			writeEnvelope(w, "<data><level>17</level><mute>false</mute></data>")
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		elements, err := client.QueryData(netcast.QueryVolumeInfo)
		require.NoError(t, err)
		require.Len(t, elements, 1)

		level, ok := elements[0].Field("level")
		assert.True(t, ok)
		assert.Equal(t, "17", level)
		assert.Equal(t, "<data><level>17</level><mute>false</mute></data>", elements[0].String())
	})

	t.Run("collects data elements nested in a dataList", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, `<dataList name="Channel List"><data><major>7</major></data><data><major>8</major></data></dataList>`)
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		elements, err := client.QueryData(netcast.QueryChannelList)
		require.NoError(t, err)
		require.Len(t, elements, 2)

		first, _ := elements[0].Field("major")
		second, _ := elements[1].Field("major")
		assert.Equal(t, "7", first)
		assert.Equal(t, "8", second)
	})

	t.Run("returns no elements for an empty envelope", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, "")
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		elements, err := client.QueryData(netcast.QueryScreenImage)
		assert.NoError(t, err)
		assert.Empty(t, elements)
	})

	t.Run("requires a session", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should reach the TV")
		})
		defer server.Close()

		client := createTestClient(server, testPairingKey)
		_, err := client.QueryData(netcast.QueryVolumeInfo)
		assert.ErrorIs(t, err, netcast.ErrNoSession)
	})

	t.Run("returns ProtocolError when the query is rejected", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		_, err := client.QueryData(netcast.Query("no_such_target"))

		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, http.StatusNotFound, protoErr.Status)
	})

	t.Run("returns ParseError on a truncated response", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?><envelope><data><level>`)
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		_, err := client.QueryData(netcast.QueryVolumeInfo)

		var parseErr *netcast.ParseError
		assert.ErrorAs(t, err, &parseErr)
		assert.True(t, client.Paired(), "a bad response must not drop the session")
	})

	t.Run("rejects an unexpected root element", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?><response><data/></response>`)
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		_, err := client.QueryData(netcast.QueryVolumeInfo)

		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Contains(t, protoErr.Reason, "unexpected root element")
	})
}

func TestClientClose(t *testing.T) {
	t.Run("drops the session and is idempotent", func(t *testing.T) {
		server := createMockTV(withPairing(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, "")
		}))
		defer server.Close()

		client := pairedTestClient(t, server)
		require.NoError(t, client.Close())
		require.NoError(t, client.Close())

		assert.False(t, client.Paired())
		assert.Empty(t, client.SessionID())
		assert.ErrorIs(t, client.SendCommand(netcast.Power), netcast.ErrNoSession)
	})

	t.Run("allows pairing again afterwards", func(t *testing.T) {
		var authRequests atomic.Int32
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			authRequests.Add(1)
			writeEnvelope(w, "<session>"+testSession+"</session>")
		})
		defer server.Close()

		client := pairedTestClient(t, server)
		require.NoError(t, client.Close())
		require.NoError(t, client.Open())

		assert.True(t, client.Paired())
		assert.Equal(t, int32(2), authRequests.Load())
	})

	t.Run("releases kept-alive connections", func(t *testing.T) {
		var closed atomic.Int32
		server := httptest.NewUnstartedServer(withPairing(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, "")
		}))
		server.Config.ConnState = func(conn net.Conn, state http.ConnState) {
			if state == http.StateClosed {
				closed.Add(1)
			}
		}
		server.Start()
		defer server.Close()

		client := pairedTestClient(t, server)
		require.NoError(t, client.Close())

		assert.Eventually(t, func() bool {
			return closed.Load() > 0
		}, time.Second, 10*time.Millisecond, "idle connection should be torn down")
	})
}

func TestConnectionErrors(t *testing.T) {
	t.Run("wraps transport failures", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {})
		server.Close()

		client := createTestClient(server, testPairingKey)
		err := client.Open()

		var connErr *netcast.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.False(t, connErr.Timeout())
		assert.False(t, client.Paired())
	})

	t.Run("flags expired deadlines as timeouts", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			writeEnvelope(w, "<session>"+testSession+"</session>")
		})
		defer server.Close()

		address := strings.TrimPrefix(server.URL, "http://")
		options := internal.NewModeOptions(internal.WithTimeout(50 * time.Millisecond))
		client := netcast.NewClient(address, testPairingKey, netcast.ProtocolROAP, options)
		err := client.Open()

		var connErr *netcast.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.True(t, connErr.Timeout())
	})
}

func TestHDCPProtocol(t *testing.T) {
	t.Run("routes auth and data through dtv_wifirc", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == "POST" && r.URL.Path == "/hdcp/api/dtv_wifirc":
				writeEnvelope(w, "<session>"+testSession+"</session>")
			case r.Method == "GET" && r.URL.Path == "/hdcp/api/dtv_wifirc":
				writeEnvelope(w, "<data><level>4</level></data>")
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		})
		defer server.Close()

		address := strings.TrimPrefix(server.URL, "http://")
		client := netcast.NewClient(address, testPairingKey, netcast.ProtocolHDCP, nil)
		require.NoError(t, client.Open())

		elements, err := client.QueryData(netcast.QueryVolumeInfo)
		require.NoError(t, err)
		assert.Len(t, elements, 1)
	})

	t.Run("keeps the dedicated command endpoint", func(t *testing.T) {
		server := createMockTV(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/hdcp/api/dtv_wifirc" {
				writeEnvelope(w, "<session>"+testSession+"</session>")
				return
			}
			assert.Equal(t, "/hdcp/api/command", r.URL.Path)
			writeEnvelope(w, "")
		})
		defer server.Close()

		address := strings.TrimPrefix(server.URL, "http://")
		client := netcast.NewClient(address, testPairingKey, netcast.ProtocolHDCP, nil)
		require.NoError(t, client.Open())
		assert.NoError(t, client.SendCommand(netcast.ChannelUp))
	})
}
