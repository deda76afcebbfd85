package provider_test

import (
	"fmt"
	"log"

	"treechat/provider"
)

func ExampleNewProvider() {
	p, err := provider.NewProvider(provider.Config{
		Type:    provider.ProviderTypeOllama,
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Provider created: %T\n", p)
	// Output: Provider created: *provider.OllamaProvider
}

func ExampleNewOpenRouterProvider() {
	p, err := provider.NewOpenRouterProvider("", "sk-or-test", "qwen/qwen3-coder:free")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(p.GetModel())
	fmt.Println(p.GetDisplayName())
	// Output:
	// qwen/qwen3-coder:free
	// qwen3-coder:free
}
