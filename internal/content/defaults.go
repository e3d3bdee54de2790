package content

import "github.com/conneroisu/hopehaven/internal/carousel"

// Default returns a fresh copy of the built-in site content.
func Default() *Content {
	return &Content{
		Brand: "Giving Them A Future",
		Org:   "Hope Haven",
		Nav: []NavItem{
			{Name: "Home", Href: "#home"},
			{Name: "About", Href: "#about"},
			{Name: "Projects", Href: "#projects"},
			{Name: "Impact", Href: "#impact"},
			{Name: "Contact", Href: "#contact"},
			{Name: "Donate", Href: "#donate", Variant: "warning"},
		},
		Hero: Hero{
			Title: "Giving Them A Future",
			Subtitle: "Transforming lives, one child at a time. Join us in our mission to provide " +
				"love, care, and opportunities for orphaned children around the world.",
			Image: "/static/children-2704878_1920.jpg",
			Stats: []Stat{
				{Value: 5000, Suffix: "+", Label: "Children Helped"},
				{Value: 127, Suffix: "+", Label: "Projects Completed"},
				{Value: 42, Label: "Countries Reached"},
			},
			Primary:   Link{Label: "Donate Now", Href: "#contact"},
			Secondary: Link{Label: "Learn More", Href: "#about"},
		},
		About: About{
			Heading: "Building Brighter Futures",
			Mission: []string{
				"For over 20 years, Hope Haven has been a beacon of hope for children in need. " +
					"What started as a small shelter has grown into a global family, a place where " +
					"children are nurtured, educated, and empowered.",
				"We believe every child deserves safety, quality education, and the freedom to dream. " +
					"Our holistic programs combine safe homes, schooling, healthcare, and mentorship " +
					"so children can flourish in mind, body, and spirit.",
			},
			Features: []Feature{
				{Title: "Safe Homes", Description: "Warm, stable homes with trained caregivers and loving environments", Color: "#6A11CB", Icon: "🏠"},
				{Title: "Education", Description: "Holistic learning & life skills for lifelong success and independence", Color: "#2575FC", Icon: "🎓"},
				{Title: "Healthcare", Description: "Routine and specialist care to keep children healthy and thriving", Color: "#FF416C", Icon: "❤"},
			},
			Slides: []carousel.Slide{
				{Src: "/static/playing.jpg", Alt: "Children playing in the Hope Haven courtyard", Caption: "Safe spaces for children to grow and play"},
				{Src: "/static/boy-writing-4379406_1920.jpg", Alt: "Students learning in our education program", Caption: "Quality education for every child"},
				{Src: "/static/ai-generated-8703863_1920.jpg", Alt: "Medical check-ups at our health center", Caption: "Comprehensive healthcare services"},
			},
		},
		Projects: []Project{
			{
				Title:       "Sankofa Learning Gardens",
				Description: "Cultivating young minds through ancestral agricultural wisdom and modern STEM education",
				Impact:      "2,400+ children blossoming annually",
				Image:       "https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?auto=format&fit=crop&w=800&q=80",
				Status:      "Flourishing",
				Location:    "Ghana & Kenya",
				Icon:        "🌱",
				Color:       "#10b981",
			},
			{
				Title:       "Sacred Waters Initiative",
				Description: "Healing communities through traditional medicine and modern pediatric care",
				Impact:      "18,000+ young souls nourished",
				Image:       "https://images.unsplash.com/photo-1559757175-0eb30cd8c063?auto=format&fit=crop&w=800&q=80",
				Status:      "Flowing",
				Location:    "Amazon Basin & Congo",
				Icon:        "💧",
				Color:       "#06b6d4",
			},
			{
				Title:       "Phoenix Rising Program",
				Description: "Ancient crafts meet modern innovation in youth vocational training",
				Impact:      "750+ youth taking flight",
				Image:       "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?auto=format&fit=crop&w=800&q=80",
				Status:      "Soaring",
				Location:    "Peru & Indonesia",
				Icon:        "🔥",
				Color:       "#f97316",
			},
			{
				Title:       "Moonbeam Scholarships",
				Description: "Targeted scholarships for bright students from rural regions",
				Impact:      "1,200+ scholarships awarded",
				Image:       "https://images.unsplash.com/photo-1516979187457-637abb4f9353?auto=format&fit=crop&w=800&q=80",
				Status:      "Open",
				Location:    "West Africa",
				Icon:        "🌕",
				Color:       "#8b5cf6",
			},
			{
				Title:       "River Guardians",
				Description: "Clean water, sanitation and environmental stewardship with youth-led teams",
				Impact:      "Communities restored & protected",
				Image:       "https://images.unsplash.com/photo-1506744038136-46273834b3fb?auto=format&fit=crop&w=800&q=80",
				Status:      "Active",
				Location:    "South America & SE Asia",
				Icon:        "🛶",
				Color:       "#14b8a6",
			},
			{
				Title:       "Starlight Workshops",
				Description: "Creative arts and tech workshops to inspire self-expression and careers",
				Impact:      "Thousands of workshops held",
				Image:       "https://images.unsplash.com/photo-1529101091764-c3526daf38fe?auto=format&fit=crop&w=800&q=80",
				Status:      "Ongoing",
				Location:    "Global",
				Icon:        "✨",
				Color:       "#f59e0b",
			},
		},
		Contact: ContactInfo{
			Address: []string{"123 Hope Street", "Greater Accra, Tema"},
			Phone:   []string{"+(233) 20-181-4258", "Mon-Fri, 9AM-5PM"},
			Email:   []string{"info@hopehaven.org", "support@hopehaven.org"},
		},
		Footer: Footer{
			Tagline: "Restoring childhoods with care, education and community.",
			SocialLinks: []Link{
				{Label: "Facebook", Href: "#"},
				{Label: "Twitter", Href: "#"},
				{Label: "Instagram", Href: "#"},
				{Label: "LinkedIn", Href: "#"},
			},
			QuickLinks: []Link{
				{Label: "About Us", Href: "#about"},
				{Label: "Projects", Href: "#projects"},
				{Label: "Volunteer", Href: "#contact"},
				{Label: "Contact", Href: "#contact"},
			},
			ContactEmail: "info@hopehaven.org",
			ContactPhone: "+233 530 487 116",
			Copyright:    "Hope Haven. All rights reserved.",
		},
	}
}
