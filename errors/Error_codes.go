package errors

// ERR is the numeric error code carried by *Error.
//
// Codes are grouped in ranges: 0-9 generic, 10-19 block, 50-59 service,
// 60-69 storage, 110-119 network, 120-129 prefix copy.
type ERR int32

const (
	ERR_UNKNOWN          ERR = 0
	ERR_INVALID_ARGUMENT ERR = 1
	ERR_NOT_FOUND        ERR = 3
	ERR_PROCESSING       ERR = 4
	ERR_CONFIGURATION    ERR = 5
	ERR_CONTEXT          ERR = 6
	ERR_CONTEXT_CANCELED ERR = 7
	ERR_ERROR            ERR = 9

	ERR_BLOCK_NOT_FOUND ERR = 10
	ERR_BLOCK_INVALID   ERR = 11

	ERR_SERVICE_UNAVAILABLE ERR = 50
	ERR_SERVICE_ERROR       ERR = 52

	ERR_STORAGE_UNAVAILABLE ERR = 60
	ERR_STORAGE_ERROR       ERR = 62

	ERR_NETWORK_ERROR            ERR = 110
	ERR_NETWORK_TIMEOUT          ERR = 111
	ERR_NETWORK_INVALID_RESPONSE ERR = 113

	ERR_DESTINATION_EXISTS ERR = 120
	ERR_RESOLUTION         ERR = 121
)

var ERR_name = map[int32]string{
	0:   "UNKNOWN",
	1:   "INVALID_ARGUMENT",
	3:   "NOT_FOUND",
	4:   "PROCESSING",
	5:   "CONFIGURATION",
	6:   "CONTEXT",
	7:   "CONTEXT_CANCELED",
	9:   "ERROR",
	10:  "BLOCK_NOT_FOUND",
	11:  "BLOCK_INVALID",
	50:  "SERVICE_UNAVAILABLE",
	52:  "SERVICE_ERROR",
	60:  "STORAGE_UNAVAILABLE",
	62:  "STORAGE_ERROR",
	110: "NETWORK_ERROR",
	111: "NETWORK_TIMEOUT",
	113: "NETWORK_INVALID_RESPONSE",
	120: "DESTINATION_EXISTS",
	121: "RESOLUTION",
}

func (x ERR) String() string {
	if name, ok := ERR_name[int32(x)]; ok {
		return name
	}

	return "UNKNOWN"
}
