package reply

import (
	"github.com/zeebo/xxh3"

	"github.com/memstore/reply/internal/jumphash"
)

// EndpointSelector picks the endpoint index for a routing key.
type EndpointSelector func(key string, endpointCount int) int

// DefaultEndpointSelector hashes the key with xxh3 and places it with Jump
// Hash, so growing the endpoint set moves a minimal share of keys.
func DefaultEndpointSelector(key string, endpointCount int) int {
	return jumphash.Hash(xxh3.HashString(key), endpointCount)
}

// staticSelector is used in tests to pin commands to one endpoint.
func staticSelector(index int) EndpointSelector {
	return func(key string, endpointCount int) int {
		return index % endpointCount
	}
}
