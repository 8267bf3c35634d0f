package netcast

// Remote Control Key Codes for LG NetCast TVs
const (
	// Power Controls
	Power Command = 1

	// Number Keys
	Num0 Command = 2
	Num1 Command = 3
	Num2 Command = 4
	Num3 Command = 5
	Num4 Command = 6
	Num5 Command = 7
	Num6 Command = 8
	Num7 Command = 9
	Num8 Command = 10
	Num9 Command = 11

	// Navigation Controls
	Up    Command = 12
	Down  Command = 13
	Left  Command = 14
	Right Command = 15
	OK    Command = 20

	// Menu Controls
	HomeMenu Command = 21
	Back     Command = 23

	// Volume Controls
	VolumeUp   Command = 24
	VolumeDown Command = 25
	MuteToggle Command = 26

	// Channel Controls
	ChannelUp   Command = 27
	ChannelDown Command = 28

	// Colour Keys
	Blue   Command = 29
	Green  Command = 30
	Red    Command = 31
	Yellow Command = 32

	// Playback Controls
	Play          Command = 33
	Pause         Command = 34
	Stop          Command = 35
	FastForward   Command = 36
	Rewind        Command = 37
	SkipForward   Command = 38
	SkipBackward  Command = 39
	Record        Command = 40
	RecordingList Command = 41
	Repeat        Command = 42

	// Broadcast Controls
	LiveTV             Command = 43
	EPG                Command = 44
	ProgramInformation Command = 45
	AspectRatio        Command = 46
	ExternalInput      Command = 47
	PIPSecondaryVideo  Command = 48
	ShowSubtitle       Command = 49
	ProgramList        Command = 50
	TeleText           Command = 51
	Mark               Command = 52

	// Extended Keys
	Video3D                Command = 400
	LR3D                   Command = 401
	Dash                   Command = 402
	PreviousChannel        Command = 403
	FavoriteChannel        Command = 404
	QuickMenu              Command = 405
	TextOption             Command = 406
	AudioDescription       Command = 407
	EnergySaving           Command = 409
	AVMode                 Command = 410
	SimpLink               Command = 411
	Exit                   Command = 412
	ReservationProgramList Command = 413
	PIPChannelUp           Command = 414
	PIPChannelDown         Command = 415
	SwitchPrimarySecondary Command = 416
	MyApps                 Command = 417
)

// Data Targets for LG NetCast status queries
const (
	QueryCurrentChannel Query = "cur_channel"
	QueryChannelList    Query = "channel_list"
	QueryContextUI      Query = "context_ui"
	QueryVolumeInfo     Query = "volume_info"
	QueryScreenImage    Query = "screen_image"
	Query3D             Query = "is_3d"
)

// Command Handlers understood by the TV firmware
const (
	HandleKeyInput      Handler = "HandleKeyInput"
	HandleTouchMove     Handler = "HandleTouchMove"
	HandleTouchClick    Handler = "HandleTouchClick"
	HandleTouchWheel    Handler = "HandleTouchWheel"
	HandleChannelChange Handler = "HandleChannelChange"
)

// Protocol generations
const (
	ProtocolROAP Protocol = "roap"
	ProtocolHDCP Protocol = "hdcp"
)

// SessionHeader carries the session identifier on authenticated requests.
const SessionHeader = "X-Netcast-Session"

// DefaultPort is the fixed TCP port the NetCast service listens on.
const DefaultPort = "8080"

// API endpoints below http://host:8080/{protocol}/api/. HDCP firmware
// multiplexes auth and data through dtv_wifirc instead.
const (
	endpointAuth    = "auth"
	endpointCommand = "command"
	endpointData    = "data"
	endpointHDCP    = "dtv_wifirc"
)

// XML wire format
const (
	contentTypeXML = "application/atom+xml"

	rootElement = "envelope"
	dataTag     = "data"

	xmlProlog          = `<?xml version="1.0" encoding="utf-8"?>`
	authKeyRequestBody = xmlProlog + `<auth><type>AuthKeyReq</type></auth>`
	authPairBody       = xmlProlog + `<auth><type>AuthReq</type><value>%s</value></auth>`
	commandBody        = xmlProlog + `<command><session>%s</session><type>%s</type>%s</command>`
)
