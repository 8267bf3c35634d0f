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

package simulator_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wokar/lgnetcast/internal/netcast"
	"github.com/wokar/lgnetcast/internal/simulator"
)

const simPairingKey = "424242"

// startSimulator serves a simulator over httptest and returns it with
// the host:port a client can dial
func startSimulator(t *testing.T, config *simulator.Config) (*simulator.Simulator, *httptest.Server, string) {
	t.Helper()
	if config == nil {
		config = &simulator.Config{PairingKey: simPairingKey, MaxSessions: 4}
	}
	sim := simulator.New(config)
	server := httptest.NewServer(sim.Router())
	t.Cleanup(server.Close)
	return sim, server, strings.TrimPrefix(server.URL, "http://")
}

// pairedClient pairs a fresh client against the simulator
func pairedClient(t *testing.T, address string, key string) *netcast.Client {
	t.Helper()
	client := netcast.NewClient(address, key, netcast.ProtocolROAP, nil)
	require.NoError(t, client.Open())
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSimulatorPairing(t *testing.T) {
	t.Run("accepts the configured pairing key", func(t *testing.T) {
		sim, _, address := startSimulator(t, nil)

		client := pairedClient(t, address, simPairingKey)
		assert.True(t, client.Paired())
		assert.Equal(t, 1, sim.ActiveSessions())
	})

	t.Run("rejects a wrong pairing key", func(t *testing.T) {
		sim, _, address := startSimulator(t, nil)

		client := netcast.NewClient(address, "000000", netcast.ProtocolROAP, nil)
		err := client.Open()

		var authErr *netcast.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.Status)
		assert.Equal(t, 0, sim.ActiveSessions())
	})

	t.Run("counts pairing key displays", func(t *testing.T) {
		sim, _, address := startSimulator(t, nil)

		client := netcast.NewClient(address, "", netcast.ProtocolROAP, nil)
		require.NoError(t, client.Open())

		assert.False(t, client.Paired())
		assert.Equal(t, 1, sim.KeyDisplays())
		assert.Equal(t, 0, sim.ActiveSessions())

		// The display-key flow leaves the client without a session
		assert.ErrorIs(t, client.SendCommand(netcast.Power), netcast.ErrNoSession)
	})

	t.Run("rejects unknown auth types", func(t *testing.T) {
		_, server, _ := startSimulator(t, nil)

		resp, err := http.Post(server.URL+"/roap/api/auth", "application/atom+xml",
			strings.NewReader(`<auth><type>AuthWishReq</type></auth>`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects malformed auth bodies", func(t *testing.T) {
		_, server, _ := startSimulator(t, nil)

		resp, err := http.Post(server.URL+"/roap/api/auth", "application/atom+xml",
			strings.NewReader(`this is not xml`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSimulatorCommands(t *testing.T) {
	t.Run("records key presses", func(t *testing.T) {
		sim, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)

		require.NoError(t, client.SendCommand(netcast.VolumeUp))
		require.NoError(t, client.SendCommand(netcast.MuteToggle))

		assert.Equal(t, []int{24, 26}, sim.KeyPresses())
	})

	t.Run("records channel changes", func(t *testing.T) {
		sim, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)

		channel := netcast.Channel{Major: 13, SourceIndex: 2, PhysicalNum: 41}
		require.NoError(t, client.ChangeChannel(channel))

		changes := sim.ChannelChanges()
		require.Len(t, changes, 1)
		assert.Equal(t, 13, changes[0].Major)
		assert.Equal(t, 2, changes[0].SourceIndex)
		assert.Equal(t, 41, changes[0].PhysicalNum)
	})

	t.Run("rejects commands without a known session", func(t *testing.T) {
		_, server, _ := startSimulator(t, nil)

		body := `<?xml version="1.0" encoding="utf-8"?><command><session>stolen</session><type>HandleKeyInput</type><value>1</value></command>`
		resp, err := http.Post(server.URL+"/roap/api/command", "application/atom+xml", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("accepts the touch handlers", func(t *testing.T) {
		_, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)

		assert.NoError(t, client.SendHandler(netcast.HandleTouchClick, "<x>10</x><y>20</y>"))
		assert.NoError(t, client.SendHandler(netcast.HandleTouchWheel, "<value>up</value>"))
	})

	t.Run("rejects a non-numeric key value", func(t *testing.T) {
		_, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)

		err := client.SendHandler(netcast.HandleKeyInput, "<value>loud</value>")

		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, http.StatusBadRequest, protoErr.Status)
	})

	t.Run("rejects unknown command types", func(t *testing.T) {
		_, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)

		err := client.SendHandler(netcast.Handler("HandleWarpDrive"), "")

		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, http.StatusBadRequest, protoErr.Status)
	})
}

func TestSimulatorData(t *testing.T) {
	t.Run("serves the stock fixtures", func(t *testing.T) {
		_, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)

		volume, err := client.QueryData(netcast.QueryVolumeInfo)
		require.NoError(t, err)
		require.Len(t, volume, 1)
		level, _ := volume[0].Field("level")
		assert.Equal(t, "17", level)
		mute, _ := volume[0].Field("mute")
		assert.Equal(t, "false", mute)

		current, err := client.QueryData(netcast.QueryCurrentChannel)
		require.NoError(t, err)
		require.Len(t, current, 1)
		channel, err := netcast.ChannelFromData(current[0])
		require.NoError(t, err)
		assert.Equal(t, "7.0 ARTE", channel.String())
		programme, _ := current[0].Field("progName")
		assert.Equal(t, "Tracks", programme)

		ui, err := client.QueryData(netcast.QueryContextUI)
		require.NoError(t, err)
		require.Len(t, ui, 1)
		mode, _ := ui[0].Field("mode")
		assert.Equal(t, "HomeMenu", mode)

		threeD, err := client.QueryData(netcast.Query3D)
		require.NoError(t, err)
		require.Len(t, threeD, 1)
		is3D, _ := threeD[0].Field("is3D")
		assert.Equal(t, "false", is3D)
	})

	t.Run("unwraps the channel list from its dataList", func(t *testing.T) {
		_, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)

		elements, err := client.QueryData(netcast.QueryChannelList)
		require.NoError(t, err)
		require.Len(t, elements, 3)

		var names []string
		for _, element := range elements {
			channel, err := netcast.ChannelFromData(element)
			require.NoError(t, err)
			names = append(names, channel.Name)
		}
		assert.Equal(t, []string{"Das Erste", "ARTE", "MDR"}, names)
	})

	t.Run("answers screen_image with an empty envelope", func(t *testing.T) {
		_, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)

		elements, err := client.QueryData(netcast.QueryScreenImage)
		assert.NoError(t, err)
		assert.Empty(t, elements)
	})

	t.Run("prefers configured fixtures over the defaults", func(t *testing.T) {
		config := &simulator.Config{
			PairingKey:  simPairingKey,
			MaxSessions: 4,
			Fixtures: map[string]string{
				"volume_info": `<data><level>55</level></data>`,
			},
		}
		_, _, address := startSimulator(t, config)
		client := pairedClient(t, address, simPairingKey)

		volume, err := client.QueryData(netcast.QueryVolumeInfo)
		require.NoError(t, err)
		require.Len(t, volume, 1)
		level, _ := volume[0].Field("level")
		assert.Equal(t, "55", level)
	})

	t.Run("returns 404 for unknown targets", func(t *testing.T) {
		_, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)

		_, err := client.QueryData(netcast.Query("weather"))

		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, http.StatusNotFound, protoErr.Status)
	})

	t.Run("requires the session header", func(t *testing.T) {
		_, server, _ := startSimulator(t, nil)

		resp, err := http.Get(server.URL + "/roap/api/data?target=volume_info")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestSimulatorSessions(t *testing.T) {
	t.Run("evicts the oldest session when the table is full", func(t *testing.T) {
		config := &simulator.Config{PairingKey: simPairingKey, MaxSessions: 1}
		sim, _, address := startSimulator(t, config)

		first := pairedClient(t, address, simPairingKey)
		second := pairedClient(t, address, simPairingKey)

		assert.Equal(t, 1, sim.ActiveSessions())
		assert.NoError(t, second.SendCommand(netcast.VolumeUp))

		err := first.SendCommand(netcast.VolumeUp)
		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, http.StatusUnauthorized, protoErr.Status)
	})

	t.Run("expires sessions after the configured TTL", func(t *testing.T) {
		config := &simulator.Config{PairingKey: simPairingKey, MaxSessions: 4, SessionTTL: "50ms"}
		require.NoError(t, config.Validate())
		_, _, address := startSimulator(t, config)

		client := pairedClient(t, address, simPairingKey)
		require.NoError(t, client.SendCommand(netcast.VolumeUp))

		time.Sleep(80 * time.Millisecond)

		err := client.SendCommand(netcast.VolumeUp)
		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, http.StatusUnauthorized, protoErr.Status)
	})

	t.Run("reset drops sessions and recorded activity", func(t *testing.T) {
		sim, _, address := startSimulator(t, nil)
		client := pairedClient(t, address, simPairingKey)
		require.NoError(t, client.SendCommand(netcast.Power))

		sim.Reset()

		assert.Equal(t, 0, sim.ActiveSessions())
		assert.Empty(t, sim.KeyPresses())
		assert.Equal(t, 0, sim.KeyDisplays())

		err := client.SendCommand(netcast.Power)
		var protoErr *netcast.ProtocolError
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, http.StatusUnauthorized, protoErr.Status)
	})
}

func TestSimulatorHDCP(t *testing.T) {
	t.Run("serves the dtv_wifirc paths", func(t *testing.T) {
		sim, _, address := startSimulator(t, nil)

		client := netcast.NewClient(address, simPairingKey, netcast.ProtocolHDCP, nil)
		require.NoError(t, client.Open())
		defer client.Close()

		require.NoError(t, client.SendCommand(netcast.ChannelUp))
		assert.Equal(t, []int{27}, sim.KeyPresses())

		volume, err := client.QueryData(netcast.QueryVolumeInfo)
		require.NoError(t, err)
		assert.Len(t, volume, 1)
	})
}

func TestSimulatorEndToEnd(t *testing.T) {
	sim, _, address := startSimulator(t, nil)

	// A fresh client does not know the key and asks the TV to show it
	discovery := netcast.NewClient(address, "", netcast.ProtocolROAP, nil)
	require.NoError(t, discovery.Open())
	require.False(t, discovery.Paired())
	require.Equal(t, 1, sim.KeyDisplays())

	// Pair with the key read off the screen
	client := netcast.NewClient(address, simPairingKey, netcast.ProtocolROAP, nil)
	require.NoError(t, client.Open())
	require.True(t, client.Paired())

	// Drive the TV
	require.NoError(t, client.SendCommand(netcast.VolumeUp))
	require.NoError(t, client.ChangeChannel(netcast.Channel{Major: 7, SourceIndex: 1, PhysicalNum: 30}))

	current, err := client.QueryData(netcast.QueryCurrentChannel)
	require.NoError(t, err)
	require.Len(t, current, 1)
	channel, err := netcast.ChannelFromData(current[0])
	require.NoError(t, err)
	assert.Equal(t, 7, channel.Major)

	assert.Equal(t, []int{24}, sim.KeyPresses())
	require.Len(t, sim.ChannelChanges(), 1)
	assert.Equal(t, 7, sim.ChannelChanges()[0].Major)

	// Hanging up drops the local session; the simulator forgets nothing
	// until its TTL or LRU evicts the entry
	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.SendCommand(netcast.Power), netcast.ErrNoSession)
	assert.Equal(t, 1, sim.ActiveSessions())
}

func ExampleSimulator() {
	sim := simulator.New(&simulator.Config{PairingKey: "889955", MaxSessions: 4})
	server := httptest.NewServer(sim.Router())
	defer server.Close()

	address := strings.TrimPrefix(server.URL, "http://")
	client := netcast.NewClient(address, "889955", netcast.ProtocolROAP, nil)
	if err := client.Open(); err != nil {
		fmt.Println("pairing failed:", err)
		return
	}
	defer client.Close()

	if err := client.SendCommand(netcast.VolumeUp); err != nil {
		fmt.Println("key press failed:", err)
		return
	}
	fmt.Println("keys received:", sim.KeyPresses())
	// Output: keys received: [24]
}
