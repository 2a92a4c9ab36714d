package memory

import (
	"context"
	"time"

	"acervo/internal/repository"
	"acervo/pkg/model"
)

// HashFunc derives password material for a demo account.
type HashFunc func(password string) (hash, salt []byte, err error)

type demoUser struct {
	user     model.User
	password string
}

func demoUsers() []demoUser {
	return []demoUser{
		{
			user: model.User{
				ID: "user1", Name: "Dr. João Silva", Email: "joao.silva@uenf.br",
				Role: model.RoleAdmin, CreatedAt: ts("2023-01-15T10:30:00Z"),
			},
			password: "123456",
		},
		{
			user: model.User{
				ID: "user2", Name: "Dra. Ana Costa", Email: "ana.costa@uenf.br",
				Role: model.RoleUser, CreatedAt: ts("2023-02-20T14:15:00Z"),
			},
			password: "admin123",
		},
		{
			user: model.User{
				ID: "user3", Name: "Dr. Roberto Dias", Email: "roberto.dias@uenf.br",
				Role: model.RoleUser, CreatedAt: ts("2023-03-10T09:45:00Z"),
			},
			password: "password",
		},
		{
			user: model.User{
				ID: "user4", Name: "Dra. Cristina Lima", Email: "cristina.lima@uenf.br",
				Role: model.RoleUser, CreatedAt: ts("2023-01-25T16:20:00Z"),
			},
			password: "password",
		},
		{
			user: model.User{
				ID: "user5", Name: "Dr. Eduardo Santos", Email: "eduardo.santos@uenf.br",
				Role: model.RoleUser, CreatedAt: ts("2023-04-05T11:10:00Z"),
			},
			password: "password",
		},
		{
			user: model.User{
				ID: "user6", Name: "Dr. André Silva", Email: "andre.silva@uenf.br",
				Role: model.RoleUser, CreatedAt: ts("2023-01-10T08:00:00Z"),
			},
			password: "password",
		},
	}
}

// DemoDocuments returns the built-in demo corpus.
func DemoDocuments() []model.Document {
	return []model.Document{
		{
			ID:              "1",
			Title:           "Análise de Qualidade da Água no Norte Fluminense",
			Description:     "Estudo detalhado sobre a qualidade da água em municípios do norte do estado do Rio de Janeiro, com foco em indicadores de potabilidade e contaminação.",
			Authors:         []string{"Dr. João Silva", "Dra. Maria Santos", "Dr. Carlos Oliveira"},
			PublicationDate: "2023-06-15",
			DocumentType:    "Artigo Científico",
			ResearchArea:    "Ciências Ambientais",
			Keywords:        []string{"água", "qualidade", "norte fluminense", "contaminação", "potabilidade"},
			FileURL:         "documents/analise-agua-nf.pdf",
			FileSize:        2458672,
			FileMimeType:    "application/pdf",
			ViewCount:       234,
			DownloadCount:   89,
			CreatedBy:       model.CreatedBy{ID: "user1", Name: "Dr. João Silva", Email: "joao.silva@uenf.br"},
			CreatedAt:       ts("2023-06-15T10:30:00Z"),
			UpdatedAt:       ts("2023-06-15T10:30:00Z"),
		},
		{
			ID:              "2",
			Title:           "Desenvolvimento de Tecnologias Sustentáveis para Agricultura",
			Description:     "Pesquisa sobre implementação de tecnologias sustentáveis na agricultura familiar da região norte fluminense.",
			Authors:         []string{"Dra. Ana Costa", "Dr. Pedro Ferreira"},
			PublicationDate: "2023-05-20",
			DocumentType:    "Dissertação",
			ResearchArea:    "Agricultura Sustentável",
			Keywords:        []string{"agricultura", "sustentabilidade", "tecnologia", "agricultura familiar"},
			FileURL:         "documents/tech-sustentavel-agri.pdf",
			FileSize:        3890245,
			FileMimeType:    "application/pdf",
			ViewCount:       156,
			DownloadCount:   67,
			CreatedBy:       model.CreatedBy{ID: "user2", Name: "Dra. Ana Costa", Email: "ana.costa@uenf.br"},
			CreatedAt:       ts("2023-05-20T14:15:00Z"),
			UpdatedAt:       ts("2023-05-20T14:15:00Z"),
		},
		{
			ID:              "3",
			Title:           "Estudo Geológico da Bacia de Campos",
			Description:     "Análise geológica detalhada da formação e estrutura da Bacia de Campos, com implicações para exploração de recursos naturais.",
			Authors:         []string{"Dr. Roberto Dias", "Dra. Luciana Alves", "Dr. Marcos Rocha"},
			PublicationDate: "2023-04-10",
			DocumentType:    "Tese",
			ResearchArea:    "Geologia",
			Keywords:        []string{"geologia", "bacia de campos", "estrutura", "recursos naturais"},
			FileURL:         "documents/estudo-geologico-bc.pdf",
			FileSize:        4567890,
			FileMimeType:    "application/pdf",
			ViewCount:       198,
			DownloadCount:   45,
			CreatedBy:       model.CreatedBy{ID: "user3", Name: "Dr. Roberto Dias", Email: "roberto.dias@uenf.br"},
			CreatedAt:       ts("2023-04-10T09:45:00Z"),
			UpdatedAt:       ts("2023-04-10T09:45:00Z"),
		},
		{
			ID:              "4",
			Title:           "Impacto das Mudanças Climáticas na Biodiversidade Local",
			Description:     "Estudo sobre os efeitos das mudanças climáticas na fauna e flora da região norte fluminense.",
			Authors:         []string{"Dra. Cristina Lima", "Dr. Fernando Souza"},
			PublicationDate: "2023-03-25",
			DocumentType:    "Relatório de Pesquisa",
			ResearchArea:    "Biodiversidade",
			Keywords:        []string{"mudanças climáticas", "biodiversidade", "fauna", "flora", "norte fluminense"},
			FileURL:         "documents/mudancas-climaticas-bio.pdf",
			FileSize:        1876543,
			FileMimeType:    "application/pdf",
			ViewCount:       289,
			DownloadCount:   112,
			CreatedBy:       model.CreatedBy{ID: "user4", Name: "Dra. Cristina Lima", Email: "cristina.lima@uenf.br"},
			CreatedAt:       ts("2023-03-25T16:20:00Z"),
			UpdatedAt:       ts("2023-03-25T16:20:00Z"),
		},
		{
			ID:              "5",
			Title:           "Inovações em Engenharia de Petróleo e Gás",
			Description:     "Pesquisa sobre novas tecnologias e metodologias para extração e processamento de petróleo e gás natural.",
			Authors:         []string{"Dr. Eduardo Santos", "Dra. Patricia Mendes", "Dr. Gabriel Torres"},
			PublicationDate: "2023-02-14",
			DocumentType:    "Artigo Científico",
			ResearchArea:    "Engenharia de Petróleo",
			Keywords:        []string{"petróleo", "gás natural", "extração", "processamento", "inovação"},
			FileURL:         "documents/inovacoes-petroleo-gas.pdf",
			FileSize:        3234567,
			FileMimeType:    "application/pdf",
			ViewCount:       167,
			DownloadCount:   78,
			CreatedBy:       model.CreatedBy{ID: "user5", Name: "Dr. Eduardo Santos", Email: "eduardo.santos@uenf.br"},
			CreatedAt:       ts("2023-02-14T11:10:00Z"),
			UpdatedAt:       ts("2023-02-14T11:10:00Z"),
		},
		{
			ID:              "6",
			Title:           "Desenvolvimento de Materiais Avançados",
			Description:     "Estudo sobre síntese e caracterização de novos materiais com propriedades específicas para aplicações industriais.",
			Authors:         []string{"Dr. André Silva", "Dra. Fernanda Costa"},
			PublicationDate: "2023-01-30",
			DocumentType:    "Dissertação",
			ResearchArea:    "Ciência dos Materiais",
			Keywords:        []string{"materiais avançados", "síntese", "caracterização", "propriedades", "aplicações industriais"},
			FileURL:         "documents/materiais-avancados.pdf",
			FileSize:        2987654,
			FileMimeType:    "application/pdf",
			ViewCount:       145,
			DownloadCount:   56,
			CreatedBy:       model.CreatedBy{ID: "user6", Name: "Dr. André Silva", Email: "andre.silva@uenf.br"},
			CreatedAt:       ts("2023-01-30T13:45:00Z"),
			UpdatedAt:       ts("2023-01-30T13:45:00Z"),
		},
	}
}

// SeedDemo loads the demo corpus into the store. Demo account passwords are
// derived at load time with the provided hash function.
func SeedDemo(s *Store, hash HashFunc) error {
	ctx := context.Background()
	for _, du := range demoUsers() {
		h, salt, err := hash(du.password)
		if err != nil {
			return err
		}
		if _, err := s.Users().Create(ctx, &repository.Credential{
			User: du.user, PasswordHash: h, Salt: salt,
		}); err != nil {
			return err
		}
	}
	for _, d := range DemoDocuments() {
		doc := d
		if _, err := s.Documents().Create(ctx, &doc); err != nil {
			return err
		}
	}
	return nil
}

func ts(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
