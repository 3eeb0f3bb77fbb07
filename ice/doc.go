// Package ice supplies the STUN/TURN server list used to establish peer
// connections.
//
// The provider attempts to fetch time-limited TURN credentials from a
// configured relay service over HTTP. Any failure (missing API key, network
// error, non-success response, malformed body) degrades to a fixed list of
// public STUN-only servers. A total failure therefore reduces connectivity
// quality across restrictive NATs, never the availability of the call flow.
package ice
