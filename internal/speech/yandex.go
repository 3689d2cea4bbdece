package speech

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	tts "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/tts/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
)

// YandexEndpoint is the SpeechKit v3 gRPC endpoint.
const YandexEndpoint = "tts.api.cloud.yandex.net:443"

// SpeechKit speed hint range.
const (
	yandexMinSpeed = 0.1
	yandexMaxSpeed = 3.0
)

var yandexVoices = []Voice{
	{ID: "marina", Name: "Yandex Marina", Culture: "ru-RU", Gender: "Female"},
	{ID: "alena", Name: "Yandex Alena", Culture: "ru-RU", Gender: "Female"},
	{ID: "filipp", Name: "Yandex Filipp", Culture: "ru-RU", Gender: "Male"},
	{ID: "john", Name: "Yandex John", Culture: "en-US", Gender: "Male"},
	{ID: "lea", Name: "Yandex Lea", Culture: "de-DE", Gender: "Female"},
	{ID: "naomi", Name: "Yandex Naomi", Culture: "he-IL", Gender: "Female"},
	{ID: "madi", Name: "Yandex Madi", Culture: "kk-KK", Gender: "Male"},
	{ID: "nigora", Name: "Yandex Nigora", Culture: "uz-UZ", Gender: "Female"},
}

// YandexConfig holds SpeechKit credentials.
type YandexConfig struct {
	APIKey   string
	FolderID string
	Endpoint string // Defaults to YandexEndpoint
}

// Yandex synthesizes MP3 segments with Yandex SpeechKit and plays them locally.
type Yandex struct {
	client   tts.SynthesizerClient
	conn     *grpc.ClientConn
	apiKey   string
	folderID string
	play     clipPlayer
}

// NewYandex opens the gRPC client. Returns ErrUnavailable when credentials are missing.
func NewYandex(cfg YandexConfig) (*Yandex, error) {
	if cfg.APIKey == "" || cfg.FolderID == "" {
		return nil, fmt.Errorf("%w: yandex: api key and folder id are required", ErrUnavailable)
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = YandexEndpoint
	}

	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("%w: yandex: connecting to %s: %v", ErrUnavailable, endpoint, err)
	}

	return &Yandex{
		client:   tts.NewSynthesizerClient(conn),
		conn:     conn,
		apiKey:   cfg.APIKey,
		folderID: cfg.FolderID,
		play:     playOnDefault,
	}, nil
}

// Name implements Backend.
func (y *Yandex) Name() string { return "yandex" }

// Voices implements Backend.
func (y *Yandex) Voices(context.Context) ([]Voice, error) {
	return append([]Voice(nil), yandexVoices...), nil
}

// Utter implements Backend.
func (y *Yandex) Utter(ctx context.Context, text string, voice Voice, prosody Prosody) (Utterance, error) {
	data, err := y.synthesize(ctx, text, voice, prosody)
	if err != nil {
		return nil, err
	}
	return playMP3(ctx, y.play, data, prosody.Gain())
}

// Close releases the gRPC connection.
func (y *Yandex) Close() error {
	return y.conn.Close()
}

func (y *Yandex) synthesize(ctx context.Context, text string, voice Voice, prosody Prosody) ([]byte, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Api-Key "+y.apiKey)
	ctx = metadata.AppendToOutgoingContext(ctx, "x-folder-id", y.folderID)

	stream, err := y.client.UtteranceSynthesis(ctx, yandexRequest(text, voice, prosody))
	if err != nil {
		return nil, fmt.Errorf("yandex synthesis: %w", err)
	}

	var data []byte
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("yandex synthesis: receiving audio: %w", err)
		}
		if chunk := resp.GetAudioChunk(); chunk != nil {
			data = append(data, chunk.GetData()...)
		}
	}
	return data, nil
}

// yandexRequest asks for MP3 with one hint per setting.
func yandexRequest(text string, voice Voice, prosody Prosody) *tts.UtteranceSynthesisRequest {
	req := &tts.UtteranceSynthesisRequest{}
	req.SetText(text)

	voiceHint := &tts.Hints{}
	voiceHint.SetVoice(voice.ID)
	speedHint := &tts.Hints{}
	speedHint.SetSpeed(yandexSpeed(prosody))
	req.SetHints([]*tts.Hints{voiceHint, speedHint})

	container := &tts.ContainerAudio{}
	container.SetContainerAudioType(tts.ContainerAudio_MP3)
	spec := &tts.AudioFormatOptions{}
	spec.SetContainerAudio(container)
	req.SetOutputAudioSpec(spec)

	req.SetLoudnessNormalizationType(tts.UtteranceSynthesisRequest_LUFS)
	return req
}

func yandexSpeed(p Prosody) float64 {
	s := p.SpeedFactor()
	if s < yandexMinSpeed {
		return yandexMinSpeed
	}
	if s > yandexMaxSpeed {
		return yandexMaxSpeed
	}
	return s
}

var _ Backend = (*Yandex)(nil)
