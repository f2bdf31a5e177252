package net

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"gleipnir/internal/book"
	"gleipnir/internal/dispatch"
	"gleipnir/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const defaultNWorkers = 10

var ErrImproperConversion = errors.New("improper type conversion")

// ClientSession contains relevant information pertaining to an individual
// connected TCP session.
type ClientSession struct {
	conn net.Conn
}

// ClientMessage links a command line to the session sending it.
type ClientMessage struct {
	sessionID string
	line      string
}

// connTask hands a freshly accepted connection to a pool worker.
type connTask struct {
	sessionID string
	conn      net.Conn
}

// Server serves the line command protocol over TCP. Commands from every
// session funnel through a single handler goroutine which owns the book,
// so the book itself never sees concurrent calls.
type Server struct {
	address            string
	port               int
	pool               utils.WorkerPool
	cancel             context.CancelFunc
	dispatcher         *dispatch.Dispatcher
	clientSessions     map[string]ClientSession
	clientSessionsLock sync.Mutex
	clientMessages     chan ClientMessage
}

func New(address string, port int, b *book.OrderBook) *Server {
	return &Server{
		address:        address,
		port:           port,
		pool:           utils.NewWorkerPool(defaultNWorkers),
		dispatcher:     dispatch.New(b),
		clientSessions: make(map[string]ClientSession),
		clientMessages: make(chan ClientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	s.cancel()
}

func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	// Setup a cancel on the context for future shutdown.
	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	// Start a tcp listener.
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	// Start the worker pool.
	s.pool.Setup(t, s.handleConnection)

	// Start the session handler. This goroutine is the only caller into
	// the book, giving it the single-threaded view it requires.
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server running")

	// Start accepting connections.
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}

			sessionID := uuid.New().String()
			log.Info().
				Str("session", sessionID).
				Str("address", conn.RemoteAddr().String()).
				Msg("new client added")
			// Add the client to client sessions we are tracking.
			// We expect to potentially maintain a long TCP session.
			s.addClientSession(sessionID, conn)

			// Pass over the connection to be read from.
			s.pool.AddTask(connTask{sessionID: sessionID, conn: conn})
		}
	}
}

// sessionHandler reads off incoming command lines from clients and feeds
// them to the dispatcher. Query answers are written straight back on the
// issuing session's connection.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case message := <-s.clientMessages:
			conn, ok := s.clientSession(message.sessionID)
			if !ok {
				// Client left between sending and handling; the command
				// goes down with its session.
				continue
			}
			s.dispatcher.Dispatch(message.line, conn)
		}
	}
}

// handleConnection is a worker method which reads command lines off the
// connection for the lifetime of the session and forwards them to the
// sessionHandler. When the connection dies, the client session is cleaned
// up. Note, any error returned from here is fatal to the pool.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	ct, ok := task.(connTask)
	if !ok {
		return ErrImproperConversion
	}

	defer func() {
		s.deleteClientSession(ct.sessionID)
		if err := ct.conn.Close(); err != nil {
			log.Error().Str("session", ct.sessionID).Err(err).Msg("closing connection")
		}
	}()

	scanner := bufio.NewScanner(ct.conn)
	for scanner.Scan() {
		select {
		case <-t.Dying():
			return nil
		case s.clientMessages <- ClientMessage{
			sessionID: ct.sessionID,
			line:      scanner.Text(),
		}:
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error().
			Err(err).
			Str("session", ct.sessionID).
			Msg("error reading from connection")
	}
	return nil
}

// clientSession is an atomic map lookup
func (s *Server) clientSession(sessionID string) (net.Conn, bool) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	session, ok := s.clientSessions[sessionID]
	return session.conn, ok
}

// addClientSession is an atomic map add
func (s *Server) addClientSession(sessionID string, conn net.Conn) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	s.clientSessions[sessionID] = ClientSession{
		conn: conn,
	}
}

// deleteClientSession is an atomic map remove
func (s *Server) deleteClientSession(sessionID string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	delete(s.clientSessions, sessionID)
}
