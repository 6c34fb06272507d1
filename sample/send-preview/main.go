package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/xavierca1/astroservice/internal/config"
	"github.com/xavierca1/astroservice/internal/entity"
	"github.com/xavierca1/astroservice/internal/infra/evaluator"
	"github.com/xavierca1/astroservice/internal/infra/integration/manychat"
	"github.com/xavierca1/astroservice/internal/infra/mail"
	"github.com/xavierca1/astroservice/internal/logger"
	"github.com/xavierca1/astroservice/internal/usecase"
)

func main() {
	channel := flag.String("channel", config.ChannelManyChat, "manychat or email")
	to := flag.String("to", "", "ManyChat subscriber id or email address")
	name := flag.String("name", "Anna", "first name used in the preview")
	dryRun := flag.Bool("dry-run", false, "only print the preview")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuração inválida: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New("development", cfg.LogLevel)
	if err != nil {
		log = zerolog.Nop()
	}

	result := evaluator.NewMagicPlaces().Evaluate("04.07.1983", "12:10", "Linz")
	preview := usecase.RenderPreview(*name, result)

	fmt.Println("🔄 Preview gerado:")
	fmt.Println(preview)
	fmt.Println()

	if *dryRun {
		return
	}
	if *to == "" {
		fmt.Fprintln(os.Stderr, "❌ -to é obrigatório para envio")
		os.Exit(2)
	}

	var ch usecase.DeliveryChannel
	switch *channel {
	case config.ChannelManyChat:
		client, err := manychat.NewClient(cfg.ManyChat, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		ch = client
	case config.ChannelEmail:
		ch = mail.NewEmailSender(cfg.SMTP, true, log)
	default:
		fmt.Fprintf(os.Stderr, "❌ canal desconhecido: %s\n", *channel)
		os.Exit(2)
	}

	outcome := ch.Send(context.Background(), *to, preview)
	printOutcome(outcome)
	if !outcome.Delivered {
		os.Exit(1)
	}
}

func printOutcome(o entity.DeliveryOutcome) {
	fmt.Printf("📋 Resultado (%s):\n", o.Channel)
	fmt.Printf("   Enviado: %t\n", o.Delivered)
	if o.SkippedReason != "" {
		fmt.Printf("   Ignorado: %s\n", o.SkippedReason)
	}
	if o.Error != "" {
		fmt.Printf("   Falha: %s (%s)\n", o.Error, o.Failure)
	}
	if o.Raw != nil {
		fmt.Printf("   Resposta: %v\n", o.Raw)
	}
}
