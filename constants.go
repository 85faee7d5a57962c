package reply

// Line terminator shared by both wire protocols.
const crlf = "\r\n"

var crlfBytes = []byte(crlf)

// RESP type markers. The first five exist in RESP2; the rest are RESP3
// additions.
const (
	respSimpleMarker = '+'
	respErrorMarker  = '-'
	respIntMarker    = ':'
	respBulkMarker   = '$'
	respArrayMarker  = '*'

	respDoubleMarker = ','
	respNullMarker   = '_'
	respMapMarker    = '%'
	respSetMarker    = '~'
	respPushMarker   = '>'
)

// Canonical RESP sentinels for the null/empty cases.
const (
	nullBulkStringV2 = "$-1\r\n"
	nullStringV3     = "_\r\n"
	nullArray        = "*-1\r\n"
)

// Error type tokens used on the Redis wire and as error counter keys.
const (
	TypeGenericError   = "ERR"
	TypeWrongTypeError = "WRONGTYPE"
	TypeOOMError       = "OOM"
)

// Memcached ASCII reply literals, without the line terminator.
const (
	mcStored      = "STORED"
	mcNotStored   = "NOT_STORED"
	mcNotFound    = "NOT_FOUND"
	mcEnd         = "END"
	mcError       = "ERROR"
	mcClientError = "CLIENT_ERROR "
	mcServerError = "SERVER_ERROR "
	mcValuePrefix = "VALUE "
)

// Counter key for memcached client errors, which carry no type token.
const mcClientErrorKey = "client_error"
