package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("PLANTIT_URL", "http://localhost:8080")
		out     = envOr("PLANTIT_OUT", "text")
		timeout = 60 * time.Second
	)

	root := &cobra.Command{
		Use:   "plantitctl",
		Short: "CLI para el API de PlantIt",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del API (env PLANTIT_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	cl := &client{BaseURL: baseURL, OutFormat: out, HTTP: httpClient}

	// ping: usa GET /healthz
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping al servicio",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/healthz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping fallo: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	// provision: corre el workflow y muestra cada etapa del stream
	var provMode, provEmail, provPassword, provAvatar string
	provisionCmd := &cobra.Command{
		Use:   "provision",
		Short: "Corre el workflow de aprovisionamiento (login|create_account)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provEmail == "" || provPassword == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			payload := map[string]any{
				"mode":     provMode,
				"email":    provEmail,
				"password": provPassword,
			}
			if provAvatar != "" {
				raw, err := os.ReadFile(provAvatar)
				if err != nil {
					return fmt.Errorf("leer avatar: %w", err)
				}
				payload["avatar"] = base64.StdEncoding.EncodeToString(raw)
			}
			b, _ := json.Marshal(payload)

			url := strings.TrimRight(cl.BaseURL, "/") + "/v1/provision"
			req, err := http.NewRequest("POST", url, bytes.NewReader(b))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := cl.HTTP.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode/100 != 2 {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("provision fallo: status=%d body=%s", resp.StatusCode, string(body))
			}

			// stream NDJSON: una línea por etapa, la última trae final=true
			scanner := bufio.NewScanner(resp.Body)
			scanner.Buffer(make([]byte, 64*1024), 1024*1024)
			failed := false
			for scanner.Scan() {
				line := scanner.Bytes()
				if len(bytes.TrimSpace(line)) == 0 {
					continue
				}
				if cl.OutFormat == "json" {
					fmt.Println(string(line))
					continue
				}
				var ev struct {
					Success bool   `json:"success"`
					Stage   string `json:"stage"`
					Message string `json:"message"`
					Final   bool   `json:"final"`
				}
				if err := json.Unmarshal(line, &ev); err != nil {
					fmt.Println(string(line))
					continue
				}
				mark := "✔"
				if !ev.Success {
					mark = "✘"
					if ev.Final {
						failed = true
					}
				}
				if ev.Message != "" {
					fmt.Printf("%s %-16s %s\n", mark, ev.Stage, ev.Message)
				} else {
					fmt.Printf("%s %s\n", mark, ev.Stage)
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}
			if failed {
				return fmt.Errorf("workflow terminó con error")
			}
			return nil
		},
	}
	provisionCmd.Flags().StringVar(&provMode, "mode", "login", "Modo: login|create_account")
	provisionCmd.Flags().StringVar(&provEmail, "email", "", "Email de la cuenta")
	provisionCmd.Flags().StringVar(&provPassword, "password", "", "Password de la cuenta")
	provisionCmd.Flags().StringVar(&provAvatar, "avatar", "", "Path a la imagen de avatar (requerido para create_account)")

	// profile get
	var profUser string
	profileGetCmd := &cobra.Command{
		Use:   "get",
		Short: "Obtiene el perfil persistido de un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			if profUser == "" {
				return fmt.Errorf("--user es requerido")
			}
			status, body, err := cl.do("GET", "/v1/profiles/"+profUser, nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("get fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	profileGetCmd.Flags().StringVar(&profUser, "user", "", "ID del usuario")

	profileCmd := &cobra.Command{Use: "profile", Short: "Operaciones sobre perfiles"}
	profileCmd.AddCommand(profileGetCmd)

	// guides list / show
	guidesListCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista las plantas con guías publicadas",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/v1/guides", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("list fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	var guidePlant string
	guidesShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Muestra los estados y documentos de una planta",
		RunE: func(cmd *cobra.Command, args []string) error {
			if guidePlant == "" {
				return fmt.Errorf("--plant es requerido")
			}
			status, body, err := cl.do("GET", "/v1/guides/"+guidePlant, nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("show fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	guidesShowCmd.Flags().StringVar(&guidePlant, "plant", "", "Nombre de la planta (ej. tomatoes)")

	guidesCmd := &cobra.Command{Use: "guides", Short: "Catálogo de guías de cultivo"}
	guidesCmd.AddCommand(guidesListCmd)
	guidesCmd.AddCommand(guidesShowCmd)

	root.AddCommand(pingCmd)
	root.AddCommand(provisionCmd)
	root.AddCommand(profileCmd)
	root.AddCommand(guidesCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
