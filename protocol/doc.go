package protocol

// This package implements parsing and serialising of the broadcasting
// protocol spoken by the race simulator's broadcasting server.
//
// The protocol is
//
// - UDP based, exactly one message per datagram
// - binary, scalar fields in a fixed little-endian byte order
// - request/response for registration and resources, server push for
//   everything else
//
// - `Outbound` - A message a client sends to the server (registration,
//                resource requests and director commands).
// - `Inbound`  - A message the server sends to a client. These are either
//                answers to resource requests or periodic pushes.
//
// === General Syntax
//
// - the first byte of every datagram is the message type
// - integers are u8, u16, i32; floats are f32
// - strings are a u16 byte length followed by that many UTF-8 bytes
// - repeated groups are prefixed with their count (u8 or u16)
// - optional groups are prefixed with a u8 presence flag
//
// === Registration
//
//   ```
//     > 1 <version:u8> <name:str> <connPsw:str> <intervalMs:i32> <cmdPsw:str>
//     < 1 <connectionID:i32> <success:u8> <readOnly:u8> <errMsg:remaining bytes>
//   ```
//
// The connection ID returned by the server frames every later outbound
// message. Once registered, a client asks for the static resources
//
//   ```
//     > 11 <connectionID:i32>      (track data)
//     > 10 <connectionID:i32>      (entry list)
//   ```
//
// and starts receiving realtime updates every `intervalMs`.
//
// === Inbound messages
//
//   ```
//     2  realtime session update
//     3  <car:u16> <driver:u16> <driverCount:u8> realtime car update
//     4  <connectionID:i32> <count:u16> <car:u16>...          entry list
//     5  <connectionID:i32> <track data>
//     6  <car:u16> <car details and drivers>                  entry list car
//     7  <type:u8> <msg:str> <timeMs:i32> <carID:i32>         broadcasting event
//   ```
//
// The entry list only carries car indices. The details of every car
// follow as individual entry list car messages, which may arrive in any
// order relative to realtime updates.
//
// === Director commands
//
//   ```
//     > 9  <connectionID:i32>                                         unregister
//     > 49 <connectionID:i32> <page:str>                              HUD page
//     > 50 <connectionID:i32> <hasCar:u8> [car:u16] <hasCam:u8> [set:str cam:str]
//     > 51 <connectionID:i32> <startMs:f32> <durationMs:f32> <car:i32> <set:str> <cam:str>
//   ```
//
// Commands are fire-and-forget, the server never acknowledges them.
//
// ==== Unknown values
//
// Unrecognised message types and enum values are never a decode error.
// Enum values keep their raw wire value and report `Known() == false`.
//
