package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"transportadoras-server-go/internal/client/api"
	"transportadoras-server-go/internal/client/cache"
	"transportadoras-server-go/internal/client/controller"
	clientsession "transportadoras-server-go/internal/client/session"
	"transportadoras-server-go/internal/client/view"
	"transportadoras-server-go/internal/domain/carrier"
	platformconfig "transportadoras-server-go/internal/platform/config"
	platformlogging "transportadoras-server-go/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "transportadoras-cli failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	cfg := result.Config

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: "cli.log",
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	tokens := clientsession.NewStore()
	if launch := os.Getenv("LAUNCH_URL"); launch != "" {
		token, _, err := clientsession.TokenFromLaunchURL(launch)
		if err != nil {
			return fmt.Errorf("LAUNCH_URL inválida: %w", err)
		}
		tokens.Set(token)
	}
	if token := os.Getenv("SESSION_TOKEN"); token != "" {
		tokens.Set(token)
	}

	serverURL := cfg.Client.ServerURL
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	client, err := api.NewClient(api.Options{
		BaseURL: serverURL,
		Token:   tokens.Token,
		Timeout: cfg.Client.RequestTimeout,
	})
	if err != nil {
		return err
	}

	store := cache.New()
	state := view.State{Filter: view.FilterAll}

	ctrl, err := controller.New(controller.Options{
		API:    client,
		Cache:  store,
		Logger: logger,
		Hooks: controller.Hooks{
			OnError: func(msg string) { fmt.Println("⚠ ", msg) },
			OnSessionExpired: func() {
				tokens.Clear()
				fmt.Println("Sessão expirada. Faça login novamente no portal e reinicie com SESSION_TOKEN.")
			},
		},
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller, err := controller.NewPoller(controller.PollerOptions{
		Controller:     ctrl,
		API:            client,
		Logger:         logger,
		PollInterval:   cfg.Client.PollInterval,
		StatusInterval: cfg.Client.StatusInterval,
		OnStatus: func(online bool) {
			if !online {
				fmt.Println("⚠  servidor indisponível")
			}
		},
	})
	if err != nil {
		return err
	}
	go poller.Run(ctx)

	if err := ctrl.Refresh(ctx); err != nil {
		fmt.Println("⚠  não foi possível carregar as transportadoras:", err)
	}

	fmt.Println("transportadoras-cli — comandos: listar, filtrar <nome>, buscar <texto>, criar, editar <id>, excluir <id>, atualizar, sair")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "sair", "exit", "quit":
			return nil
		case "listar":
			render(store, state)
		case "filtrar":
			if arg == "" {
				arg = view.FilterAll
			}
			state.Filter = strings.ToUpper(arg)
			render(store, state)
		case "buscar":
			state.Search = arg
			render(store, state)
		case "atualizar":
			if err := ctrl.Refresh(ctx); err == nil {
				render(store, state)
			}
		case "criar":
			record, ok := promptRecord(scanner, carrier.Carrier{})
			if !ok {
				continue
			}
			if created, err := ctrl.Create(ctx, record); err == nil {
				fmt.Println("criada:", created.ID)
			}
		case "editar":
			existing, found := store.Find(arg)
			if !found {
				fmt.Println("id não encontrado:", arg)
				continue
			}
			record, ok := promptRecord(scanner, existing)
			if !ok {
				continue
			}
			if _, err := ctrl.Update(ctx, arg, record); err == nil {
				fmt.Println("atualizada:", arg)
			}
		case "excluir":
			if err := ctrl.Delete(ctx, arg); err == nil {
				fmt.Println("excluída:", arg)
			}
		case "nomes":
			for _, name := range view.DistinctNames(store.All()) {
				fmt.Println(" ", name)
			}
		default:
			fmt.Println("comando desconhecido:", cmd)
		}
	}
}

func render(store *cache.Cache, state view.State) {
	rows := view.Render(store.All(), state)
	if len(rows) == 0 {
		fmt.Println("nenhuma transportadora encontrada")
		return
	}
	for _, row := range rows {
		fmt.Printf("%-38s %-30s %s\n", row.ID, row.Name, row.Regions)
		if row.Email != "" || row.Phones != "" || row.Mobiles != "" {
			fmt.Printf("%38s %s %s %s\n", "", row.Email, row.Phones, row.Mobiles)
		}
	}
}

// promptRecord asks for each field, keeping the current value when the user
// just presses enter.
func promptRecord(scanner *bufio.Scanner, current carrier.Carrier) (carrier.Carrier, bool) {
	record := current.Clone()

	fields := []struct {
		label string
		set   func(string)
		cur   string
	}{
		{"nome", func(v string) { record.Name = v }, current.Name},
		{"email", func(v string) { record.Email = v }, current.Email},
		{"telefones (separados por vírgula)", func(v string) { record.Phones = splitList(v) }, strings.Join(current.Phones, ", ")},
		{"celulares (separados por vírgula)", func(v string) { record.Mobiles = splitList(v) }, strings.Join(current.Mobiles, ", ")},
		{"regiões (separadas por vírgula)", func(v string) { record.Regions = splitList(v) }, strings.Join(current.Regions, ", ")},
		{"estados (separados por vírgula)", func(v string) { record.States = splitList(v) }, strings.Join(current.States, ", ")},
	}

	for _, field := range fields {
		if field.cur != "" {
			fmt.Printf("%s [%s]: ", field.label, field.cur)
		} else {
			fmt.Printf("%s: ", field.label)
		}
		if !scanner.Scan() {
			return carrier.Carrier{}, false
		}
		value := strings.TrimSpace(scanner.Text())
		if value != "" {
			field.set(value)
		}
	}
	return record, true
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
