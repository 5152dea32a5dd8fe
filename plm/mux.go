// Copyright 2018 Andrew Bates
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plm

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/abates/insteon-plm"
)

// frameOrErr is what the reader goroutine posts back to the dispatcher: a
// parsed frame, or the read error that ended the reader loop.
type frameOrErr struct {
	frame Frame
	err   error
}

type subscribeRequest struct {
	match  func(Frame) bool
	ch     chan Frame
	respCh chan uint64
}

type subscriber struct {
	match func(Frame) bool
	ch    chan Frame
}

// Subscription is a live, scoped view onto frames matching a predicate.
// Callers must call Close when done so the dispatcher stops copying frames
// into C.
type Subscription struct {
	mux *Mux
	id  uint64
	C   <-chan Frame
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.mux.unsubscribe(s.id)
}

// Mux is the request/response multiplexer (component E): a single
// dispatcher goroutine owns all mutable state (the subscriber list and the
// all-linking waiter list); a dedicated reader goroutine performs the
// blocking port reads and posts parsed frames back over a channel, the Go
// expression of "cross-thread posting to the cooperative loop". The write
// path holds writeMu for the full write-then-await-response sequence,
// which is stricter than simply serializing the write itself: two
// concurrent WriteRead calls can never have their wire sequences
// interleave.
type Mux struct {
	port       io.ReadWriter
	timeout    time.Duration
	retryDelay time.Duration

	writeMu sync.Mutex

	frameCh       chan frameOrErr
	subscribeCh   chan subscribeRequest
	unsubscribeCh chan uint64
	allLinkWaitCh chan chan Frame
}

// NewMux starts the reader and dispatcher goroutines over port and returns
// the multiplexer. port is never touched again except through the mux.
func NewMux(port io.ReadWriter, timeout, retryDelay time.Duration) *Mux {
	m := &Mux{
		port:       port,
		timeout:    timeout,
		retryDelay: retryDelay,

		frameCh:       make(chan frameOrErr, 4),
		subscribeCh:   make(chan subscribeRequest, 1),
		unsubscribeCh: make(chan uint64, 1),
		allLinkWaitCh: make(chan chan Frame, 1),
	}
	go m.readLoop()
	go m.dispatchLoop()
	return m
}

// readLoop performs the blocking port reads and feeds the dispatcher. It
// owns the accumulation buffer; nothing else touches it.
func (m *Mux) readLoop() {
	buf := &bytes.Buffer{}
	tmp := make([]byte, 256)
	for {
		n, err := m.port.Read(tmp)
		if err != nil {
			m.frameCh <- frameOrErr{err: err}
			return
		}
		if n == 0 {
			continue
		}
		buf.Write(tmp[:n])
		frames, _ := ParseFrames(buf)
		for _, f := range frames {
			insteon.Log.Tracef("RX %s", f)
			m.frameCh <- frameOrErr{frame: f}
		}
	}
}

// dispatchLoop is the single owner of the subscriber list and the
// all-linking waiter list. Every read of that state happens on this
// goroutine; every other goroutine talks to it over channels.
func (m *Mux) dispatchLoop() {
	subs := make(map[uint64]subscriber)
	var nextID uint64
	var allLinkWaiters []chan Frame

	for {
		select {
		case foe := <-m.frameCh:
			if foe.err != nil {
				insteon.Log.Warningf("PLM read loop ended: %v", foe.err)
				return
			}
			frame := foe.frame
			for _, s := range subs {
				if !s.match(frame) {
					continue
				}
				select {
				case s.ch <- frame:
				default:
					insteon.Log.Infof("subscriber channel full, dropping %s", frame)
				}
			}
			if frame.Command == CmdAllLinkingCompleted {
				for _, w := range allLinkWaiters {
					select {
					case w <- frame:
					default:
					}
				}
				allLinkWaiters = nil
			}

		case req := <-m.subscribeCh:
			nextID++
			subs[nextID] = subscriber{match: req.match, ch: req.ch}
			req.respCh <- nextID

		case id := <-m.unsubscribeCh:
			delete(subs, id)

		case w := <-m.allLinkWaitCh:
			allLinkWaiters = append(allLinkWaiters, w)
		}
	}
}

// Subscribe registers match against every frame received from the port.
// Matching frames are copied onto the returned Subscription's C channel
// until Close is called.
func (m *Mux) Subscribe(match func(Frame) bool) *Subscription {
	ch := make(chan Frame, 8)
	respCh := make(chan uint64, 1)
	m.subscribeCh <- subscribeRequest{match: match, ch: ch, respCh: respCh}
	id := <-respCh
	return &Subscription{mux: m, id: id, C: ch}
}

func (m *Mux) unsubscribe(id uint64) {
	m.unsubscribeCh <- id
}

// ReadFrames scopes a subscription to one or more command bytes.
func (m *Mux) ReadFrames(codes ...byte) *Subscription {
	set := make(map[byte]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return m.Subscribe(func(f Frame) bool { return set[f.Command] })
}

// ReadInsteonMessages scopes a subscription to standard and extended
// message-received frames, the convenience path automation dispatch reads
// from.
func (m *Mux) ReadInsteonMessages() *Subscription {
	return m.ReadFrames(CmdStandardMessageReceived, CmdExtendedMessageReceived)
}

// WaitAllLinkingCompleted registers a one-shot waiter for the next
// all-linking-completed frame. cancel, if closed before the frame arrives,
// abandons the wait.
func (m *Mux) WaitAllLinkingCompleted(cancel <-chan struct{}) (Frame, error) {
	ch := make(chan Frame, 1)
	m.allLinkWaitCh <- ch
	select {
	case f := <-ch:
		return f, nil
	case <-cancel:
		return Frame{}, insteon.ErrCancelled
	}
}

// WriteRead writes one outbound command and waits for its ack/nak
// response, retrying on NAK up to retries times with retryDelay between
// attempts. writeMu is held for the entire sequence so concurrent callers
// can never interleave their wire traffic.
func (m *Mux) WriteRead(cmd byte, body []byte, retries int) (Frame, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	for attempt := 0; ; attempt++ {
		sub := m.ReadFrames(cmd)
		wire := EncodeFrame(cmd, body)
		insteon.Log.Tracef("TX % x", wire)
		if _, err := m.port.Write(wire); err != nil {
			sub.Close()
			return Frame{}, err
		}

		select {
		case frame := <-sub.C:
			sub.Close()
			if frame.Nak && attempt < retries {
				time.Sleep(m.retryDelay)
				continue
			}
			if frame.Nak {
				return frame, &insteon.CommandFailure{Command: cmd}
			}
			return frame, nil
		case <-time.After(m.timeout):
			sub.Close()
			return Frame{}, insteon.ErrAckTimeout
		}
	}
}
